// utils/flash.go
package utils

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// FlashPublicRoot is where staged games are served from (mounted at /flash).
const FlashPublicRoot = "public/flash"

// StageFlashGame makes an uploaded game playable. A bare .swf is copied
// into the public tree as-is; a zip archive is extracted there and the
// entry .swf located inside. Returns the URL path of the playable file.
func StageFlashGame(localPath, gameID string) (string, error) {
	destDir := filepath.Join(FlashPublicRoot, gameID)
	if err := os.MkdirAll(destDir, os.ModePerm); err != nil {
		return "", err
	}

	lower := strings.ToLower(localPath)
	switch {
	case strings.HasSuffix(lower, ".swf"):
		dest := filepath.Join(destDir, "game.swf")
		if err := copyFile(localPath, dest); err != nil {
			return "", err
		}
		return "/flash/" + gameID + "/game.swf", nil

	case strings.HasSuffix(lower, ".zip"):
		if err := Unzip(localPath, destDir); err != nil {
			return "", fmt.Errorf("failed to extract archive: %w", err)
		}
		entry, err := findSwfEntryPoint(destDir)
		if err != nil {
			return "", fmt.Errorf("archive contains no .swf: %w", err)
		}
		return "/flash/" + gameID + "/" + entry, nil

	default:
		return "", fmt.Errorf("unsupported game file type: %s", filepath.Ext(localPath))
	}
}

// Preferred entry filenames inside an archive (case-insensitive); any other
// .swf is accepted as a fallback.
var swfEntryCandidates = []string{
	"game.swf",
	"main.swf",
	"index.swf",
	"play.swf",
}

func findSwfEntryPoint(root string) (string, error) {
	var preferred, fallback string
	err := filepath.Walk(root, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() {
			return nil
		}
		name := strings.ToLower(info.Name())
		if !strings.HasSuffix(name, ".swf") {
			return nil
		}
		rel, _ := filepath.Rel(root, path)
		rel = filepath.ToSlash(rel) // forward slashes for URLs
		if fallback == "" {
			fallback = rel
		}
		for _, candidate := range swfEntryCandidates {
			if name == candidate {
				preferred = rel
				return filepath.SkipAll
			}
		}
		return nil
	})
	if err != nil {
		return "", err
	}
	if preferred != "" {
		return preferred, nil
	}
	if fallback != "" {
		return fallback, nil
	}
	return "", os.ErrNotExist
}
