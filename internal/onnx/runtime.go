package onnx

import (
	"fmt"
	"os"
	"runtime"

	ort "github.com/yalue/onnxruntime_go"
)

// EnsureRuntime points onnxruntime at a usable shared library and
// initializes the environment once. An explicit libraryPath wins;
// otherwise the VANBAN_ONNX_LIB environment variable and a set of common
// install locations are probed.
func EnsureRuntime(libraryPath string) error {
	if ort.IsInitialized() {
		return nil
	}

	candidates := make([]string, 0, 6)
	if libraryPath != "" {
		candidates = append(candidates, libraryPath)
	}
	if env := os.Getenv("VANBAN_ONNX_LIB"); env != "" {
		candidates = append(candidates, env)
	}
	candidates = append(candidates, systemLibraryPaths()...)

	found := false
	for _, path := range candidates {
		if _, err := os.Stat(path); err == nil {
			ort.SetSharedLibraryPath(path)
			found = true
			break
		}
	}
	if !found && libraryPath != "" {
		return fmt.Errorf("onnxruntime library not found at %s", libraryPath)
	}

	if err := ort.InitializeEnvironment(); err != nil {
		return fmt.Errorf("initialize onnxruntime: %w", err)
	}
	return nil
}

func systemLibraryPaths() []string {
	switch runtime.GOOS {
	case "darwin":
		return []string{
			"/usr/local/lib/libonnxruntime.dylib",
			"/opt/homebrew/lib/libonnxruntime.dylib",
		}
	case "windows":
		return []string{"onnxruntime.dll"}
	default:
		return []string{
			"/usr/lib/libonnxruntime.so",
			"/usr/local/lib/libonnxruntime.so",
			"/usr/lib/x86_64-linux-gnu/libonnxruntime.so",
		}
	}
}
