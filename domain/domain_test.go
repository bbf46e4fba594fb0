package domain

import (
	"errors"
	"fmt"
	"math"
	"testing"
)

// Error tests

func TestDomainError_Error(t *testing.T) {
	// Without cause
	err := DomainError{
		Code:    "TEST_ERROR",
		Message: "Test message",
	}
	expected := "[TEST_ERROR] Test message"
	if err.Error() != expected {
		t.Errorf("Expected '%s', got '%s'", expected, err.Error())
	}

	// With cause
	cause := errors.New("underlying error")
	errWithCause := DomainError{
		Code:    "TEST_ERROR",
		Message: "Test message",
		Cause:   cause,
	}
	expectedWithCause := "[TEST_ERROR] Test message: underlying error"
	if errWithCause.Error() != expectedWithCause {
		t.Errorf("Expected '%s', got '%s'", expectedWithCause, errWithCause.Error())
	}
}

func TestDomainError_Unwrap(t *testing.T) {
	cause := errors.New("underlying error")
	err := DomainError{
		Code:    "TEST_ERROR",
		Message: "Test message",
		Cause:   cause,
	}

	unwrapped := err.Unwrap()
	if unwrapped != cause {
		t.Error("Unwrap should return the cause")
	}

	// Without cause
	errNoCause := DomainError{
		Code:    "TEST_ERROR",
		Message: "Test message",
	}
	if errNoCause.Unwrap() != nil {
		t.Error("Unwrap should return nil when no cause")
	}
}

func TestNewDomainError(t *testing.T) {
	cause := errors.New("cause")
	err := NewDomainError("CODE", "message", cause)

	domainErr, ok := err.(DomainError)
	if !ok {
		t.Fatal("Should return DomainError type")
	}
	if domainErr.Code != "CODE" {
		t.Errorf("Expected code 'CODE', got '%s'", domainErr.Code)
	}
	if domainErr.Message != "message" {
		t.Errorf("Expected message 'message', got '%s'", domainErr.Message)
	}
	if domainErr.Cause != cause {
		t.Error("Cause should be set")
	}
}

func TestNewInvalidInputError(t *testing.T) {
	cause := errors.New("invalid")
	err := NewInvalidInputError("bad input", cause)

	domainErr := err.(DomainError)
	if domainErr.Code != ErrCodeInvalidInput {
		t.Errorf("Expected code '%s', got '%s'", ErrCodeInvalidInput, domainErr.Code)
	}
}

func TestNewFileNotFoundError(t *testing.T) {
	err := NewFileNotFoundError("/path/to/file", nil)

	domainErr := err.(DomainError)
	if domainErr.Code != ErrCodeFileNotFound {
		t.Errorf("Expected code '%s', got '%s'", ErrCodeFileNotFound, domainErr.Code)
	}
	if domainErr.Message != "file not found: /path/to/file" {
		t.Errorf("Unexpected message: %s", domainErr.Message)
	}
}

func TestNewParseError(t *testing.T) {
	cause := errors.New("syntax error")
	err := NewParseError("repo.cc.json", cause)

	domainErr := err.(DomainError)
	if domainErr.Code != ErrCodeParseError {
		t.Errorf("Expected code '%s', got '%s'", ErrCodeParseError, domainErr.Code)
	}
}

func TestNewAnalysisError(t *testing.T) {
	err := NewAnalysisError("analysis failed", nil)

	domainErr := err.(DomainError)
	if domainErr.Code != ErrCodeAnalysisError {
		t.Errorf("Expected code '%s', got '%s'", ErrCodeAnalysisError, domainErr.Code)
	}
}

func TestNewConfigError(t *testing.T) {
	err := NewConfigError("invalid config", nil)

	domainErr := err.(DomainError)
	if domainErr.Code != ErrCodeConfigError {
		t.Errorf("Expected code '%s', got '%s'", ErrCodeConfigError, domainErr.Code)
	}
}

func TestNewOutputError(t *testing.T) {
	err := NewOutputError("write failed", nil)

	domainErr := err.(DomainError)
	if domainErr.Code != ErrCodeOutputError {
		t.Errorf("Expected code '%s', got '%s'", ErrCodeOutputError, domainErr.Code)
	}
}

func TestNewUnsupportedFormatError(t *testing.T) {
	err := NewUnsupportedFormatError("xml")

	domainErr := err.(DomainError)
	if domainErr.Code != ErrCodeUnsupportedFormat {
		t.Errorf("Expected code '%s', got '%s'", ErrCodeUnsupportedFormat, domainErr.Code)
	}
	if domainErr.Message != "unsupported format: xml" {
		t.Errorf("Unexpected message: %s", domainErr.Message)
	}
}

func TestNewValidationError(t *testing.T) {
	err := NewValidationError("validation failed")

	domainErr := err.(DomainError)
	if domainErr.Code != ErrCodeInvalidInput {
		t.Errorf("Expected code '%s', got '%s'", ErrCodeInvalidInput, domainErr.Code)
	}
}

func TestNewStorageError(t *testing.T) {
	err := NewStorageError("insert failed", nil)

	domainErr := err.(DomainError)
	if domainErr.Code != ErrCodeStorageError {
		t.Errorf("Expected code '%s', got '%s'", ErrCodeStorageError, domainErr.Code)
	}
}

func TestErrorCode_Wrapped(t *testing.T) {
	err := fmt.Errorf("evaluating repo: %w", NewFileNotFoundError("repo.linter.txt", nil))

	if got := ErrorCode(err); got != ErrCodeFileNotFound {
		t.Errorf("Expected code '%s', got '%s'", ErrCodeFileNotFound, got)
	}
	if !HasErrorCode(err, ErrCodeFileNotFound) {
		t.Error("HasErrorCode should see through wrapping")
	}
	if ErrorCode(errors.New("plain")) != "" {
		t.Error("plain errors carry no code")
	}
}

// Output format tests

func TestOutputFormat_Constants(t *testing.T) {
	formats := map[OutputFormat]string{
		OutputFormatText: "text",
		OutputFormatJSON: "json",
		OutputFormatYAML: "yaml",
		OutputFormatCSV:  "csv",
		OutputFormatHTML: "html",
	}

	for format, expected := range formats {
		if string(format) != expected {
			t.Errorf("OutputFormat %s should equal '%s'", format, expected)
		}
		if !format.IsValid() {
			t.Errorf("OutputFormat %s should be valid", format)
		}
	}

	if OutputFormat("dot").IsValid() {
		t.Error("dot is not a supported format")
	}
}

// Request tests

func TestQualityRequest_Validate(t *testing.T) {
	valid := QualityRequest{
		Repositories: []string{"worker", "server"},
		WorkDir:      ".",
		Policy:       DefaultPolicy(),
	}

	tests := []struct {
		name    string
		modify  func(r *QualityRequest)
		wantErr bool
	}{
		{"valid", func(r *QualityRequest) {}, false},
		{"no repositories", func(r *QualityRequest) { r.Repositories = nil }, true},
		{"empty repository", func(r *QualityRequest) { r.Repositories = []string{""} }, true},
		{"duplicate repository", func(r *QualityRequest) { r.Repositories = []string{"a", "a"} }, true},
		{"no work dir", func(r *QualityRequest) { r.WorkDir = "" }, true},
		{"bad format", func(r *QualityRequest) { r.OutputFormat = "xml" }, true},
		{"threshold too high", func(r *QualityRequest) { r.Policy.CoverageThreshold = 101 }, true},
		{"threshold negative", func(r *QualityRequest) { r.Policy.CoverageThreshold = -1 }, true},
		{"threshold not a number", func(r *QualityRequest) { r.Policy.CoverageThreshold = math.NaN() }, true},
		{"repository outside work dir", func(r *QualityRequest) { r.Repositories = []string{"../secrets"} }, true},
		{"repository with separator", func(r *QualityRequest) { r.Repositories = []string{"org/worker"} }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := valid
			req.Repositories = append([]string(nil), valid.Repositories...)
			tt.modify(&req)
			err := req.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestValidateRepositoryName(t *testing.T) {
	tests := []struct {
		name    string
		wantErr bool
	}{
		{"worker", false},
		{"my-service.v2", false},
		{"..hidden", false},
		{"", true},
		{".", true},
		{"..", true},
		{"../worker", true},
		{"org/worker", true},
		{`org\worker`, true},
		{"/etc/passwd", true},
	}

	for _, tt := range tests {
		err := ValidateRepositoryName(tt.name)
		if (err != nil) != tt.wantErr {
			t.Errorf("ValidateRepositoryName(%q) error = %v, wantErr %v", tt.name, err, tt.wantErr)
		}
		if err != nil && !HasErrorCode(err, ErrCodeInvalidInput) {
			t.Errorf("Expected INVALID_INPUT for %q, got %v", tt.name, err)
		}
	}
}

// Policy tests

func TestPolicy_IgnoredCounts(t *testing.T) {
	p := Policy{
		IgnoredPylint:     map[string][]string{"worker": {"a.py", "b.py"}},
		IgnoredPydocstyle: map[string][]string{"worker": {"tests/data/license/license.py"}},
	}

	pylint, pydocstyle := p.IgnoredCounts("worker")
	if pylint != 2 || pydocstyle != 1 {
		t.Errorf("Expected 2/1 ignored files, got %d/%d", pylint, pydocstyle)
	}

	pylint, pydocstyle = p.IgnoredCounts("other")
	if pylint != 0 || pydocstyle != 0 {
		t.Errorf("Expected 0/0 ignored files, got %d/%d", pylint, pydocstyle)
	}
}

func TestGateConditions_Complete(t *testing.T) {
	if len(GateConditions) != 9 {
		t.Errorf("Expected 9 gate conditions, got %d", len(GateConditions))
	}
}

func TestErrorCodeConstants(t *testing.T) {
	codes := map[string]string{
		ErrCodeInvalidInput:      "INVALID_INPUT",
		ErrCodeFileNotFound:      "FILE_NOT_FOUND",
		ErrCodeParseError:        "PARSE_ERROR",
		ErrCodeAnalysisError:     "ANALYSIS_ERROR",
		ErrCodeConfigError:       "CONFIG_ERROR",
		ErrCodeOutputError:       "OUTPUT_ERROR",
		ErrCodeUnsupportedFormat: "UNSUPPORTED_FORMAT",
		ErrCodeStorageError:      "STORAGE_ERROR",
	}

	for code, expected := range codes {
		if code != expected {
			t.Errorf("Error code should be '%s', got '%s'", expected, code)
		}
	}
}
