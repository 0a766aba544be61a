package database

import (
	"embed"
	"fmt"
	"io/fs"
	"path"
	"slices"
	"strconv"
	"strings"
)

// Migration is one versioned SQL schema change with its rollback.
type Migration struct {
	Version    int
	Name       string
	UpScript   string
	DownScript string
}

func (m Migration) String() string {
	return fmt.Sprintf("%06d_%s", m.Version, m.Name)
}

//go:embed migrations/*.sql
var migrationFS embed.FS

// embedded is parsed once; a malformed file is a build defect.
var embedded = func() []Migration {
	loaded, err := LoadMigrations(migrationFS, "migrations")
	if err != nil {
		panic(fmt.Sprintf("embedded migrations: %v", err))
	}
	return loaded
}()

// Migrations returns the embedded migrations in version order.
func Migrations() []Migration {
	return slices.Clone(embedded)
}

// LoadMigrations reads NNNNNN_name.up.sql / NNNNNN_name.down.sql pairs from dir
// and returns them sorted by version.
func LoadMigrations(fsys fs.FS, dir string) ([]Migration, error) {
	entries, err := fs.ReadDir(fsys, dir)
	if err != nil {
		return nil, fmt.Errorf("read migrations dir: %w", err)
	}

	byVersion := make(map[int]Migration)
	for _, entry := range entries {
		base, ok := strings.CutSuffix(entry.Name(), ".up.sql")
		if entry.IsDir() || !ok {
			continue
		}
		m, err := parseMigrationName(base)
		if err != nil {
			return nil, err
		}
		if prev, dup := byVersion[m.Version]; dup {
			return nil, fmt.Errorf("migration version %d used by both %s and %s", m.Version, prev, m)
		}
		if m.UpScript, err = readScript(fsys, dir, base+".up.sql"); err != nil {
			return nil, err
		}
		if m.DownScript, err = readScript(fsys, dir, base+".down.sql"); err != nil {
			return nil, err
		}
		byVersion[m.Version] = m
	}

	out := make([]Migration, 0, len(byVersion))
	for _, m := range byVersion {
		out = append(out, m)
	}
	slices.SortFunc(out, func(a, b Migration) int { return a.Version - b.Version })
	return out, nil
}

func parseMigrationName(base string) (Migration, error) {
	version, name, ok := strings.Cut(base, "_")
	if !ok || name == "" {
		return Migration{}, fmt.Errorf("migration %s: expected <version>_<name>", base)
	}
	v, err := strconv.Atoi(version)
	if err != nil || v <= 0 {
		return Migration{}, fmt.Errorf("migration %s: version must be a positive integer", base)
	}
	return Migration{Version: v, Name: name}, nil
}

func readScript(fsys fs.FS, dir, name string) (string, error) {
	data, err := fs.ReadFile(fsys, path.Join(dir, name))
	if err != nil {
		return "", fmt.Errorf("read migration script %s: %w", name, err)
	}
	return string(data), nil
}
