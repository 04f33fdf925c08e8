package beancount

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/shunichi-ikebuchi/pocketr/pkg/date"
	"github.com/shunichi-ikebuchi/pocketr/pkg/pathutil"
)

// AccountsFile is the file under the export root holding open directives.
const AccountsFile = "accounts.beancount"

// Repository defines the interface for Beancount file operations.
type Repository interface {
	// AppendTransaction appends a formatted entry to a monthly file
	AppendTransaction(month date.Month, entry string, comment ...string) error

	// ReadMonthFile reads the content of a monthly file
	ReadMonthFile(month date.Month) (string, error)

	// MonthFileExists checks if a monthly file exists
	MonthFileExists(month date.Month) bool

	// GetMonthFilesInYear gets all monthly files in a year
	GetMonthFilesInYear(year int) ([]string, error)

	// EnsureMonthFile ensures a monthly file exists with header
	EnsureMonthFile(month date.Month) error

	// ReadAccounts reads the accounts file, or "" when there is none
	ReadAccounts() (string, error)

	// WriteAccounts replaces the accounts file with the given directives
	WriteAccounts(directives []string) error
}

// FileSystemRepository is a file system implementation of Repository.
type FileSystemRepository struct {
	pathResolver *pathutil.PathResolver
	now          func() time.Time
}

// NewFileSystemRepository creates a new FileSystemRepository.
func NewFileSystemRepository(pathResolver *pathutil.PathResolver) *FileSystemRepository {
	return &FileSystemRepository{
		pathResolver: pathResolver,
		now:          time.Now,
	}
}

func (r *FileSystemRepository) monthPath(month date.Month) (string, error) {
	filePath, err := r.pathResolver.GetMonthFilePath(month.String())
	if err != nil {
		return "", fmt.Errorf("failed to get month file path: %w", err)
	}
	return filePath, nil
}

// AppendTransaction appends an entry to a monthly file.
// It creates the file if it doesn't exist.
func (r *FileSystemRepository) AppendTransaction(month date.Month, entry string, comment ...string) error {
	filePath, err := r.monthPath(month)
	if err != nil {
		return err
	}

	// Ensure file exists with header
	if err := r.EnsureMonthFile(month); err != nil {
		return fmt.Errorf("failed to ensure month file: %w", err)
	}

	var sb strings.Builder
	if len(comment) > 0 && comment[0] != "" {
		sb.WriteString(fmt.Sprintf("; %s\n", comment[0]))
	}
	sb.WriteString(entry)
	if !strings.HasSuffix(entry, "\n") {
		sb.WriteString("\n")
	}
	sb.WriteString("\n")

	f, err := os.OpenFile(filePath, os.O_APPEND|os.O_WRONLY, 0644)
	if err != nil {
		return fmt.Errorf("failed to open file for appending: %w", err)
	}
	defer f.Close()

	if _, err := f.WriteString(sb.String()); err != nil {
		return fmt.Errorf("failed to write to file: %w", err)
	}

	return nil
}

// ReadMonthFile reads the content of a monthly file.
// Returns empty string if file doesn't exist.
func (r *FileSystemRepository) ReadMonthFile(month date.Month) (string, error) {
	filePath, err := r.monthPath(month)
	if err != nil {
		return "", err
	}

	if !r.pathResolver.FileExists(filePath) {
		return "", nil
	}

	data, err := os.ReadFile(filePath)
	if err != nil {
		return "", fmt.Errorf("failed to read file: %w", err)
	}

	return string(data), nil
}

// MonthFileExists checks if a monthly file exists.
func (r *FileSystemRepository) MonthFileExists(month date.Month) bool {
	filePath, err := r.monthPath(month)
	if err != nil {
		return false
	}
	return r.pathResolver.FileExists(filePath)
}

// GetMonthFilesInYear returns the YYYY-MM keys of the monthly files in a
// year, sorted.
func (r *FileSystemRepository) GetMonthFilesInYear(year int) ([]string, error) {
	yearDir := r.pathResolver.GetYearDir(fmt.Sprintf("%04d", year))
	if !r.pathResolver.FileExists(yearDir) {
		return []string{}, nil
	}

	entries, err := os.ReadDir(yearDir)
	if err != nil {
		return nil, fmt.Errorf("failed to read year directory: %w", err)
	}

	var monthFiles []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := entry.Name()
		if filepath.Ext(name) == ".beancount" {
			monthFiles = append(monthFiles, strings.TrimSuffix(name, ".beancount"))
		}
	}
	sort.Strings(monthFiles)

	return monthFiles, nil
}

// EnsureMonthFile ensures a monthly file exists with header.
// If the file already exists, this is a no-op.
func (r *FileSystemRepository) EnsureMonthFile(month date.Month) error {
	filePath, err := r.monthPath(month)
	if err != nil {
		return err
	}

	if r.pathResolver.FileExists(filePath) {
		return nil
	}

	if err := r.pathResolver.EnsureParentDir(filePath); err != nil {
		return fmt.Errorf("failed to ensure parent directory: %w", err)
	}

	header := fmt.Sprintf("; Beancount file for %s\n; Generated at %s\n\n", month, r.now().Format(time.RFC3339))
	if err := os.WriteFile(filePath, []byte(header), 0644); err != nil {
		return fmt.Errorf("failed to write file: %w", err)
	}

	return nil
}

// ReadAccounts reads {export}/accounts.beancount.
func (r *FileSystemRepository) ReadAccounts() (string, error) {
	filePath := filepath.Join(r.pathResolver.GetExportDir(), AccountsFile)
	if !r.pathResolver.FileExists(filePath) {
		return "", nil
	}

	data, err := os.ReadFile(filePath)
	if err != nil {
		return "", fmt.Errorf("failed to read accounts file: %w", err)
	}
	return string(data), nil
}

// WriteAccounts replaces {export}/accounts.beancount.
func (r *FileSystemRepository) WriteAccounts(directives []string) error {
	root := r.pathResolver.GetExportDir()
	if err := r.pathResolver.EnsureDir(root); err != nil {
		return err
	}

	content := "; Accounts referenced by exported transactions\n\n" + strings.Join(directives, "")
	if err := os.WriteFile(filepath.Join(root, AccountsFile), []byte(content), 0644); err != nil {
		return fmt.Errorf("failed to write accounts file: %w", err)
	}
	return nil
}
