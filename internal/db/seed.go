package db

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"sync"

	"golang.org/x/crypto/bcrypt"
	"gopkg.in/yaml.v3"
)

//go:embed seed.yaml
var seedYAML []byte

var (
	seedOnce sync.Once
	seedDB   *Database
	seedErr  error
)

// Seed returns a fresh copy of the seed dataset. It panics if the embedded
// seed is invalid, which can only happen at build time.
func Seed() *Database {
	seedOnce.Do(func() {
		seedDB, seedErr = ParseSeed(seedYAML)
	})
	if seedErr != nil {
		panic(fmt.Sprintf("db: invalid embedded seed: %v", seedErr))
	}
	return seedDB.Clone()
}

// SeedYAML returns the embedded seed source.
func SeedYAML() []byte {
	return append([]byte(nil), seedYAML...)
}

// ParseSeed decodes a YAML dataset into a Database. The YAML is converted to
// JSON first so the model's json tags are the single field mapping.
// Plaintext passwords are hashed.
func ParseSeed(src []byte) (*Database, error) {
	var doc map[string]any
	if err := yaml.Unmarshal(src, &doc); err != nil {
		return nil, fmt.Errorf("parse seed yaml: %w", err)
	}
	raw, err := json.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("convert seed: %w", err)
	}
	var d Database
	if err := json.Unmarshal(raw, &d); err != nil {
		return nil, fmt.Errorf("decode seed: %w", err)
	}
	d.normalize()

	for i := range d.Users {
		u := &d.Users[i]
		if u.Password == "" || IsPasswordHash(u.Password) {
			continue
		}
		h, err := bcrypt.GenerateFromPassword([]byte(u.Password), bcrypt.MinCost)
		if err != nil {
			return nil, fmt.Errorf("hash seed password for %s: %w", u.ID, err)
		}
		u.Password = string(h)
	}
	return &d, nil
}
