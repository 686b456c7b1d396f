package commands

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"omnibust/internal/config"
)

var initFlags struct {
	force bool
}

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Write a starter omnibust.yaml for this project",
	Long: `Scans the project with the built-in defaults, infers which directories
hold static assets and which hold code, and writes a starter omnibust.yaml
next to them.`,
	RunE: runInit,
}

func init() {
	initCmd.Flags().BoolVar(&initFlags.force, "force", false, "Overwrite an existing config file")
}

func runInit(cmd *cobra.Command, args []string) error {
	target := filepath.Join(project, "omnibust.yaml")
	if _, err := os.Stat(target); err == nil && !initFlags.force {
		return fmt.Errorf("%s already exists, use --force to overwrite", target)
	}

	defaults := config.Default()
	static, code, err := enumerate(project, defaults)
	if err != nil {
		return enhanceError("project scan", err)
	}

	inferred := defaults
	if dirs := inferDirs(project, static); len(dirs) > 0 {
		inferred.StaticDirs = dirs
	}
	if dirs := inferDirs(project, code); len(dirs) > 0 {
		inferred.CodeDirs = dirs
	}
	if types := inferFiletypes(static); len(types) > 0 {
		inferred.StaticFiletypes = types
	}
	if types := inferFiletypes(code); len(types) > 0 {
		inferred.CodeFiletypes = types
	}

	data, err := yaml.Marshal(inferred)
	if err != nil {
		return err
	}
	header := "# omnibust configuration, generated by 'omnibust init'.\n" +
		"# See 'omnibust --help' for the available commands.\n"
	if err := os.WriteFile(target, append([]byte(header), data...), 0644); err != nil {
		return enhanceError("config write", err)
	}

	printStatus("Wrote %s: %d static assets in %v, %d code files in %v",
		target, len(static), inferred.StaticDirs, len(code), inferred.CodeDirs)
	return nil
}

// inferDirs reduces file paths to the sorted set of top-level project
// directories containing them.
func inferDirs(project string, paths []string) []string {
	set := make(map[string]struct{})
	for _, p := range paths {
		rel, err := filepath.Rel(project, p)
		if err != nil {
			continue
		}
		rel = filepath.ToSlash(rel)
		dir := "."
		if i := strings.Index(rel, "/"); i >= 0 {
			dir = rel[:i]
		}
		set[dir] = struct{}{}
	}
	// Files at the project root subsume everything below it.
	if _, ok := set["."]; ok {
		return []string{"."}
	}
	dirs := make([]string, 0, len(set))
	for d := range set {
		dirs = append(dirs, d)
	}
	sort.Strings(dirs)
	return dirs
}

// inferFiletypes returns the sorted glob list of extensions present.
func inferFiletypes(paths []string) []string {
	set := make(map[string]struct{})
	for _, p := range paths {
		if ext := strings.ToLower(filepath.Ext(p)); ext != "" {
			set["*"+ext] = struct{}{}
		}
	}
	types := make([]string, 0, len(set))
	for t := range set {
		types = append(types, t)
	}
	sort.Strings(types)
	return types
}
