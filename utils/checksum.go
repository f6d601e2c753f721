package utils

import (
	"bufio"
	"errors"

	//#nosec G501 -- md5 sidecars are still required by Maven repositories.
	"crypto/md5"
	//#nosec G505 -- sha1 sidecars are still required by Maven repositories.
	"crypto/sha1"
	"fmt"
	"hash"
	"io"
	"os"

	"github.com/minio/sha256-simd"
)

type Algorithm int

const (
	MD5 Algorithm = iota
	SHA1
	SHA256
)

// Order in which checksum sidecar files are written next to a staged artifact.
var SidecarAlgorithms = []Algorithm{MD5, SHA1, SHA256}

var algorithmFunc = map[Algorithm]func() hash.Hash{
	// Go native crypto algorithms:
	MD5:  md5.New,
	SHA1: sha1.New,
	// sha256-simd algorithm:
	SHA256: sha256.New,
}

// Extension returns the file extension of the checksum sidecar, without the leading dot.
func (a Algorithm) Extension() string {
	switch a {
	case MD5:
		return "md5"
	case SHA1:
		return "sha1"
	case SHA256:
		return "sha256"
	default:
		return ""
	}
}

func GetFileChecksums(filePath string, checksumType ...Algorithm) (checksums map[Algorithm]string, err error) {
	file, err := os.Open(filePath)
	if err != nil {
		return
	}
	defer func() {
		err = errors.Join(err, file.Close())
	}()
	return CalcChecksums(file, checksumType...)
}

// CalcChecksums calculates all hashes at once using AsyncMultiWriter. The file is therefore read only once.
func CalcChecksums(reader io.Reader, checksumType ...Algorithm) (map[Algorithm]string, error) {
	hashes, err := calcChecksums(reader, checksumType...)
	if err != nil {
		return nil, err
	}
	return sumResults(hashes), nil
}

// WriteChecksumFiles writes a '<file>.<algorithm>' sidecar for every requested algorithm and returns the calculated checksums.
// The sidecar holds the hex digest only, which is the layout Maven repositories expect.
func WriteChecksumFiles(filePath string, checksumType ...Algorithm) (map[Algorithm]string, []string, error) {
	checksums, err := GetFileChecksums(filePath, checksumType...)
	if err != nil {
		return nil, nil, err
	}
	var sidecars []string
	for _, algorithm := range checksumType {
		sidecarPath := filePath + "." + algorithm.Extension()
		if err = os.WriteFile(sidecarPath, []byte(checksums[algorithm]), 0644); err != nil {
			return nil, sidecars, err
		}
		sidecars = append(sidecars, sidecarPath)
	}
	return checksums, sidecars, nil
}

func calcChecksums(reader io.Reader, checksumType ...Algorithm) (map[Algorithm]hash.Hash, error) {
	hashes := getChecksumByAlgorithm(checksumType...)
	pageSize := os.Getpagesize()
	sizedReader := bufio.NewReaderSize(reader, pageSize)
	var hashWriter []io.Writer
	for _, v := range hashes {
		hashWriter = append(hashWriter, v)
	}
	multiWriter := AsyncMultiWriter(hashWriter...)
	_, err := io.Copy(multiWriter, sizedReader)
	if err != nil {
		return nil, err
	}
	return hashes, nil
}

func sumResults(hashes map[Algorithm]hash.Hash) map[Algorithm]string {
	results := map[Algorithm]string{}
	for k, v := range hashes {
		results[k] = fmt.Sprintf("%x", v.Sum(nil))
	}
	return results
}

func getChecksumByAlgorithm(checksumType ...Algorithm) map[Algorithm]hash.Hash {
	hashes := map[Algorithm]hash.Hash{}
	if len(checksumType) == 0 {
		for k, v := range algorithmFunc {
			hashes[k] = v()
		}
		return hashes
	}

	for _, v := range checksumType {
		hashes[v] = algorithmFunc[v]()
	}
	return hashes
}
