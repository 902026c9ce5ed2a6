// Package uploads maps conversations and users to dedicated directories for
// binary attachments and places uploaded files inside them.
package uploads

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/google/uuid"
)

// generalDir receives uploads that arrive without a conversation id.
const generalDir = "general"

// Manager owns two directory trees: one subdirectory per conversation under
// the uploads root, and one subdirectory per user under the user-images root
// holding at most one profile image.
type Manager struct {
	uploadsRoot    string
	userImagesRoot string
}

// NewManager constructs a manager rooted at the two provided directories.
func NewManager(uploadsRoot, userImagesRoot string) *Manager {
	return &Manager{uploadsRoot: uploadsRoot, userImagesRoot: userImagesRoot}
}

// UploadsRoot reports the conversation attachment root.
func (m *Manager) UploadsRoot() string { return m.uploadsRoot }

// UserImagesRoot reports the profile image root.
func (m *Manager) UserImagesRoot() string { return m.userImagesRoot }

// EnsureConversationDir creates the conversation's attachment directory if
// absent, parents included. Recreating an existing directory is a no-op.
func (m *Manager) EnsureConversationDir(conversationID string) error {
	if conversationID == "" {
		conversationID = generalDir
	}
	dir := filepath.Join(m.uploadsRoot, conversationID)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("ensure conversation dir %s: %w", dir, err)
	}
	return nil
}

// RemoveConversationDir recursively deletes the conversation's attachment
// directory. A directory that does not exist is not an error.
func (m *Manager) RemoveConversationDir(conversationID string) error {
	if conversationID == "" {
		return nil
	}
	dir := filepath.Join(m.uploadsRoot, conversationID)
	if err := os.RemoveAll(dir); err != nil {
		return fmt.Errorf("remove conversation dir %s: %w", dir, err)
	}
	return nil
}

// SaveConversationFile stores an uploaded file under the conversation's
// directory (or the general directory when no conversation id is given)
// under a freshly generated name that keeps the original extension. It
// returns the path relative to the uploads root, the form stored on file
// message records.
func (m *Manager) SaveConversationFile(conversationID, originalName string, r io.Reader) (string, error) {
	if conversationID == "" {
		conversationID = generalDir
	}
	if err := m.EnsureConversationDir(conversationID); err != nil {
		return "", err
	}

	name := uuid.NewString() + filepath.Ext(originalName)
	if err := writeFile(filepath.Join(m.uploadsRoot, conversationID, name), r); err != nil {
		return "", err
	}
	return filepath.Join(conversationID, name), nil
}

// SaveProfileImage stores a user's profile image as profile.<ext> inside the
// user's directory, replacing any previous image with the same extension.
// It returns the path relative to the user-images root.
func (m *Manager) SaveProfileImage(userID, originalName string, r io.Reader) (string, error) {
	if userID == "" {
		return "", fmt.Errorf("save profile image: user id is required")
	}

	dir := filepath.Join(m.userImagesRoot, userID)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("ensure user dir %s: %w", dir, err)
	}

	name := "profile" + filepath.Ext(originalName)
	if err := writeFile(filepath.Join(dir, name), r); err != nil {
		return "", err
	}
	return filepath.Join(userID, name), nil
}

func writeFile(path string, r io.Reader) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create upload %s: %w", path, err)
	}
	defer f.Close()

	if _, err := io.Copy(f, r); err != nil {
		return fmt.Errorf("write upload %s: %w", path, err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("flush upload %s: %w", path, err)
	}
	return nil
}
