package fileurl

import (
	"os"
	"path/filepath"
)

// IsDir 判断所给路径是否为文件夹
func IsDir(path string) bool {
	s, err := os.Stat(path)
	if err != nil {
		return false
	}
	return s.IsDir()
}

// IsExist 判断所给路径是否存在
func IsExist(dst string) bool {
	_, err := os.Stat(dst)
	if err != nil {
		return os.IsExist(err)
	}
	return true
}

// CreatePath creates the parent directory of dst
// CreatePath 创建 dst 所在目录
func CreatePath(dst string, perm os.FileMode) error {
	dir := filepath.Dir(dst)
	if dir == "." || dir == "" {
		return nil
	}
	return os.MkdirAll(dir, perm)
}

// WriteIfMissing writes data to dst only when dst does not exist yet
// WriteIfMissing 仅当 dst 不存在时写入 data，返回是否写入
func WriteIfMissing(dst string, data []byte, perm os.FileMode) (bool, error) {
	if IsExist(dst) {
		return false, nil
	}
	if err := CreatePath(dst, 0o755); err != nil {
		return false, err
	}
	if err := os.WriteFile(dst, data, perm); err != nil {
		return false, err
	}
	return true, nil
}
