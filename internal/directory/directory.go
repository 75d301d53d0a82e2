// Package directory resolves access codes to customers for login.
package directory

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/nikolayk812/cartengine/internal/domain"
)

type entry struct {
	Name string `json:"name"`
}

type Directory struct {
	users map[string]domain.UserSession
}

func LoadFile(path string) (*Directory, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("os.Open: %w", err)
	}
	defer f.Close()

	d, err := Parse(f)
	if err != nil {
		return nil, fmt.Errorf("users[%s]: %w", path, err)
	}

	return d, nil
}

// Parse reads {"<code>": {"name": "..."}}; codes are normalized.
func Parse(r io.Reader) (*Directory, error) {
	var doc map[string]entry
	if err := json.NewDecoder(r).Decode(&doc); err != nil {
		return nil, fmt.Errorf("json.Decode: %w", err)
	}

	users := make(map[string]domain.UserSession, len(doc))
	for code, e := range doc {
		session := domain.NewUserSession(code, e.Name)
		if session.Code == "" {
			return nil, fmt.Errorf("user code is empty")
		}
		if _, dup := users[session.Code]; dup {
			return nil, fmt.Errorf("user code[%s] is duplicated", session.Code)
		}
		users[session.Code] = session
	}

	return &Directory{users: users}, nil
}

func (d *Directory) Lookup(code string) (domain.UserSession, bool) {
	s, ok := d.users[domain.NormalizeCode(code)]
	return s, ok
}

func (d *Directory) Len() int {
	return len(d.users)
}
