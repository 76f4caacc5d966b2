package rogue

import (
	"regexp"
	"strings"
)

var (
	flywayPrefix  = regexp.MustCompile(`^V\d+__(.+)$`)
	versionPrefix = regexp.MustCompile(`^(\d{3,}|V\d+)[-_](.+)$`)
	versionStart  = regexp.MustCompile(`^(\d{14}|\d{3,}[-_]|V\d+)`)

	nameSuffixes = []string{".sql", "_up", "_down", "-up", "-down"}

	migrationKeywords = []string{
		"create",
		"alter",
		"add",
		"drop",
		"modify",
		"update",
		"insert",
		"delete",
		"migration",
		"schema",
		"table",
		"index",
		"column",
	}
)

// ExtractName derives a migration name from a file stem or directory name by
// removing version prefixes and direction suffixes.
//
// Examples:
//   - "20231224150552_user" -> "user"
//   - "20231224150552-create_users" -> "create_users"
//   - "20230101_create_posts" -> "create_posts"
//   - "001_create_users" -> "create_users"
//   - "V1__create_users" -> "create_users"
//   - "create_users_up" -> "create_users"
//   - "create_users_table" -> "create_users_table"
func ExtractName(stem string) string {
	if m := flywayPrefix.FindStringSubmatch(stem); m != nil {
		return m[1]
	}

	if m := versionPrefix.FindStringSubmatch(stem); m != nil {
		return m[2]
	}

	name := stem
	for _, suffix := range nameSuffixes {
		name = strings.TrimSuffix(name, suffix)
	}

	return name
}

// LooksLikeMigration reports whether a file stem looks like a migration, either
// because it starts with a version/timestamp or because it mentions a DDL or
// migration keyword.
func LooksLikeMigration(stem string) bool {
	if versionStart.MatchString(stem) {
		return true
	}

	lower := strings.ToLower(stem)
	for _, kw := range migrationKeywords {
		if strings.Contains(lower, kw) {
			return true
		}
	}

	return false
}
