package shell

import "context"

// Dialogs shows native dialogs. Implementations are provided by runtimes.
type Dialogs interface {
	// Open returns the selected paths, or nil when the user cancelled.
	Open(ctx context.Context, opts OpenDialogOptions) ([]string, error)

	// Save returns the chosen path, or "" when the user cancelled.
	Save(ctx context.Context, opts SaveDialogOptions) (string, error)

	// Message returns the label of the button the user pressed.
	Message(ctx context.Context, opts MessageDialogOptions) (string, error)
}

// FileFilter restricts a file dialog to a set of extensions.
type FileFilter struct {
	Name       string   `json:"name"`
	Extensions []string `json:"extensions"`
}

// OpenDialogOptions configures a file or directory picker.
type OpenDialogOptions struct {
	Title                string       `json:"title,omitempty"`
	DefaultPath          string       `json:"defaultPath,omitempty"`
	Filters              []FileFilter `json:"filters,omitempty"`
	Multiple             bool         `json:"multiple,omitempty"`
	Directory            bool         `json:"directory,omitempty"`
	ShowHidden           bool         `json:"showHidden,omitempty"`
	CanCreateDirectories bool         `json:"canCreateDirectories,omitempty"`
}

// SaveDialogOptions configures a save dialog.
type SaveDialogOptions struct {
	Title                string       `json:"title,omitempty"`
	DefaultPath          string       `json:"defaultPath,omitempty"`
	Filters              []FileFilter `json:"filters,omitempty"`
	CanCreateDirectories bool         `json:"canCreateDirectories,omitempty"`
}

// MessageKind is the severity shown by a message dialog.
type MessageKind string

const (
	KindInfo     MessageKind = "info"
	KindWarning  MessageKind = "warning"
	KindError    MessageKind = "error"
	KindQuestion MessageKind = "question"
)

// MessageDialogOptions configures a message box.
type MessageDialogOptions struct {
	Title         string      `json:"title,omitempty"`
	Message       string      `json:"message"`
	Kind          MessageKind `json:"kind,omitempty"`
	Buttons       []string    `json:"buttons,omitempty"`
	DefaultButton string      `json:"defaultButton,omitempty"`
	CancelButton  string      `json:"cancelButton,omitempty"`
}
