package commands

import (
	"fmt"
	"log/slog"
	"path/filepath"
	"sort"
	"strings"

	"omnibust/internal/config"
	"omnibust/internal/pathmatch"
	"omnibust/internal/scanner"
	"omnibust/internal/walker"
)

func printStatus(format string, args ...interface{}) {
	slog.Info(fmt.Sprintf(format, args...))
}

// kindFromTarget maps a config target name to a reference kind.
func kindFromTarget(target string) scanner.Kind {
	if target == "filename" {
		return scanner.KindFilename
	}
	return scanner.KindQuery
}

// enumerate walks the configured roots and returns the static asset and code
// candidates. Identical static and code roots are walked once and split by
// extension; otherwise each set of roots is walked with its own filter.
func enumerate(project string, cfg config.Config) (static, code []string, err error) {
	dirExclude := pathmatch.New(cfg.IgnoreDirs...)

	if sameRoots(cfg.StaticDirs, cfg.CodeDirs) {
		combined := append(append([]string{}, cfg.StaticFiletypes...), cfg.CodeFiletypes...)
		all, err := walker.Walk(walker.Options{
			Roots:      joinRoots(project, cfg.StaticDirs),
			FileFilter: pathmatch.New(combined...),
			DirExclude: dirExclude,
		})
		if err != nil {
			return nil, nil, err
		}
		static, code = walker.Partition(all, cfg.StaticFiletypes, cfg.CodeFiletypes)
		return static, code, nil
	}

	static, err = walker.Walk(walker.Options{
		Roots:      joinRoots(project, cfg.StaticDirs),
		FileFilter: pathmatch.New(cfg.StaticFiletypes...),
		DirExclude: dirExclude,
	})
	if err != nil {
		return nil, nil, err
	}
	code, err = walker.Walk(walker.Options{
		Roots:      joinRoots(project, cfg.CodeDirs),
		FileFilter: pathmatch.New(cfg.CodeFiletypes...),
		DirExclude: dirExclude,
	})
	if err != nil {
		return nil, nil, err
	}
	return static, code, nil
}

func joinRoots(project string, dirs []string) []string {
	roots := make([]string, 0, len(dirs))
	for _, d := range dirs {
		roots = append(roots, filepath.Join(project, d))
	}
	return roots
}

func sameRoots(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	as := append([]string{}, a...)
	bs := append([]string{}, b...)
	sort.Strings(as)
	sort.Strings(bs)
	for i := range as {
		if as[i] != bs[i] {
			return false
		}
	}
	return true
}

// enhanceError adds actionable suggestions to common failure modes.
func enhanceError(operation string, err error) error {
	if err == nil {
		return nil
	}

	errMsg := err.Error()

	if strings.Contains(errMsg, "NoCredentialProviders") || strings.Contains(errMsg, "no valid credentials") {
		return fmt.Errorf("%s failed: No AWS credentials found.\n"+
			"Solutions:\n"+
			"  - Set AWS_PROFILE environment variable\n"+
			"  - Use the sync.profile config key\n"+
			"  - Configure AWS credentials with 'aws configure'\n"+
			"Original error: %w", operation, err)
	}

	if strings.Contains(errMsg, "AccessDenied") || strings.Contains(errMsg, "Access Denied") {
		return fmt.Errorf("%s failed: Access Denied.\n"+
			"Solutions:\n"+
			"  - Check IAM permissions for s3:PutObject on the bucket\n"+
			"  - Verify the correct AWS profile is being used\n"+
			"Original error: %w", operation, err)
	}

	if strings.Contains(errMsg, "no such file or directory") {
		return fmt.Errorf("%s failed: Path not found.\n"+
			"Solutions:\n"+
			"  - Check the --project path is correct\n"+
			"  - Ensure the directory exists and is readable\n"+
			"Original error: %w", operation, err)
	}

	return fmt.Errorf("%s failed: %w", operation, err)
}
