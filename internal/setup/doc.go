// Package setup installs rustme into a project: it scaffolds a starting
// configuration and manages the git pre-commit hook that keeps generated
// documents from going stale.
//
//	written, err := setup.Scaffold(dir, false)
//	result, err := setup.InstallHook(hooksDir, setup.InstallOptions{Chain: true})
//	status := setup.CheckHookStatus(hooksDir)
//	result, err := setup.UninstallHook(hooksDir)
//
// Command wiring (flags, output) lives in cmd/rustme; this package only
// touches the filesystem.
package setup
