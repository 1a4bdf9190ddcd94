package utils

import (
	"crypto/md5"
	"encoding/hex"
	"path/filepath"
	"strings"
)

// CalculateMD5 computes the MD5 hash of a byte slice.
func CalculateMD5(data []byte) string {
	hasher := md5.New()
	hasher.Write(data)
	return hex.EncodeToString(hasher.Sum(nil))
}

// FileExt 返回小写扩展名 (含点)，没有扩展名时返回空字符串
func FileExt(name string) string {
	return strings.ToLower(filepath.Ext(name))
}
