package auth

import (
	_ "embed"
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// ClientRoleMember is assigned to every user registered through create-user.
const ClientRoleMember = "MEMBER"

//go:embed roles.yml
var defaultRoles []byte

// Role is a named permission set.
type Role struct {
	Name        string      `json:"name"`
	Permissions Permissions `json:"permissions"`
}

// RoleTable maps role names to permissions for both token kinds.
type RoleTable struct {
	Client  map[string]Permissions `yaml:"client"`
	Service map[string]Permissions `yaml:"service"`
}

// LoadRoles reads the role table from path, or the embedded table when path is empty.
func LoadRoles(path string) (*RoleTable, error) {
	if path == "" {
		return ParseRoles(defaultRoles)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read roles file: %w", err)
	}
	return ParseRoles(data)
}

// ParseRoles decodes a YAML role table.
func ParseRoles(data []byte) (*RoleTable, error) {
	var t RoleTable
	if err := yaml.Unmarshal(data, &t); err != nil {
		return nil, fmt.Errorf("parse roles: %w", err)
	}
	if len(t.Service) == 0 {
		return nil, errors.New("roles: no service roles defined")
	}
	if _, ok := t.Client[ClientRoleMember]; !ok {
		return nil, fmt.Errorf("roles: client role %s is required", ClientRoleMember)
	}
	return &t, nil
}

// ClientRole resolves a client role by name.
func (t *RoleTable) ClientRole(name string) (Role, bool) {
	p, ok := t.Client[name]
	return Role{Name: name, Permissions: p}, ok
}

// ServiceRole resolves a service role by name.
func (t *RoleTable) ServiceRole(name string) (Role, bool) {
	p, ok := t.Service[name]
	return Role{Name: name, Permissions: p}, ok
}
