package utils

import (
	"errors"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

const (
	StagingDirPrefix = "staging-deploy-"

	// Max staging dir age in hours
	maxStagingDirAge = 24.0
)

// Check if path points at a file.
// If path points at a symlink and `followSymlink == false`,
// function will return `true` regardless of the symlink target
func IsFileExists(path string, followSymlink bool) (bool, error) {
	fileInfo, err := GetFileInfo(path, followSymlink)
	if err != nil {
		if os.IsNotExist(err) { // If doesn't exist, don't omit an error
			return false, nil
		}
		return false, err
	}
	return !fileInfo.IsDir(), nil
}

// Check if path points at a directory.
// If path points at a symlink and `followSymlink == false`,
// function will return `false` regardless of the symlink target
func IsDirExists(path string, followSymlink bool) (bool, error) {
	fileInfo, err := GetFileInfo(path, followSymlink)
	if err != nil {
		if os.IsNotExist(err) { // If doesn't exist, don't omit an error
			return false, nil
		}
		return false, err
	}
	return fileInfo.IsDir(), nil
}

// Get the file info of the file in path.
// If path points at a symlink and `followSymlink == false`, return the file info of the symlink instead
func GetFileInfo(path string, followSymlink bool) (fileInfo os.FileInfo, err error) {
	if followSymlink {
		fileInfo, err = os.Stat(path)
	} else {
		fileInfo, err = os.Lstat(path)
	}
	return fileInfo, err
}

// CopyFile copies src to the exact dstPath, creating the parent directories and keeping the source file mode.
func CopyFile(dstPath, src string) (err error) {
	srcFile, err := os.Open(src)
	if err != nil {
		return
	}
	defer func() {
		err = errors.Join(err, srcFile.Close())
	}()
	srcInfo, err := srcFile.Stat()
	if err != nil {
		return
	}
	if srcInfo.IsDir() {
		return errors.New(src + " is a directory")
	}
	if err = os.MkdirAll(filepath.Dir(dstPath), 0755); err != nil {
		return
	}
	dstFile, err := os.OpenFile(dstPath, os.O_RDWR|os.O_CREATE|os.O_EXCL, srcInfo.Mode())
	if err != nil {
		return
	}
	defer func() {
		err = errors.Join(err, dstFile.Close())
	}()
	_, err = io.Copy(dstFile, srcFile)
	return
}

// CreateStagingDir creates a fresh staging directory under baseDir and returns its path.
// The name embeds the creation timestamp so that CleanOldStagingDirs can find abandoned runs.
func CreateStagingDir(baseDir string) (string, error) {
	if err := os.MkdirAll(baseDir, 0755); err != nil {
		return "", err
	}
	timestamp := strconv.FormatInt(time.Now().Unix(), 10)
	return os.MkdirTemp(baseDir, StagingDirPrefix+timestamp+"-*")
}

// RemoveDir removes dirPath and everything under it. A missing directory is not an error.
func RemoveDir(dirPath string) error {
	exists, err := IsDirExists(dirPath, false)
	if err != nil || !exists {
		return err
	}
	return os.RemoveAll(dirPath)
}

// Old runs may leave staging dirs behind.
// Each staging dir is named with prefix+timestamp, search for all dirs that match the common prefix and validate their timestamp.
func CleanOldStagingDirs(baseDir string) (removed []string, err error) {
	entries, err := os.ReadDir(baseDir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}
	now := time.Now()
	for _, entry := range entries {
		if !entry.IsDir() || !strings.HasPrefix(entry.Name(), StagingDirPrefix) {
			continue
		}
		timeStamp, err := extractTimestamp(entry.Name())
		if err != nil {
			return removed, err
		}
		if now.Sub(timeStamp).Hours() > maxStagingDirAge {
			dirPath := filepath.Join(baseDir, entry.Name())
			if err = os.RemoveAll(dirPath); err != nil {
				return removed, err
			}
			removed = append(removed, dirPath)
		}
	}
	return removed, nil
}

func extractTimestamp(item string) (time.Time, error) {
	// Get timestamp from dir name.
	endTimestampIndex := strings.LastIndex(item, "-")
	if endTimestampIndex < 0 {
		return time.Time{}, errors.New("no timestamp in " + item)
	}
	beginningTimestampIndex := strings.LastIndex(item[:endTimestampIndex], "-")
	timestampStr := item[beginningTimestampIndex+1 : endTimestampIndex]
	// Convert to int.
	timestampInt, err := strconv.ParseInt(timestampStr, 10, 64)
	if err != nil {
		return time.Time{}, err
	}
	// Convert to time type.
	return time.Unix(timestampInt, 0), nil
}
