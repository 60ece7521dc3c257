package domain

// DirectoryEntry maps a person's name to the address notifications go to.
// Task assignees are free-text names looked up here.
type DirectoryEntry struct {
	Name  string `json:"name"`
	Email string `json:"email"`
}
