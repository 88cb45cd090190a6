package watcher

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/ccp-p/caption-sentencer/pkg/utils"
)

// FileArchiver 将处理完成的字幕文件移动到归档文件夹
type FileArchiver struct {
	targetFolder string
	now          func() time.Time
	mutex        sync.Mutex
}

// NewFileArchiver 创建文件归档器
func NewFileArchiver(targetFolder string) (*FileArchiver, error) {
	if err := utils.EnsureDirExists(targetFolder); err != nil {
		return nil, err
	}

	return &FileArchiver{
		targetFolder: targetFolder,
		now:          time.Now,
	}, nil
}

// TargetFolder 归档目标文件夹
func (a *FileArchiver) TargetFolder() string {
	return a.targetFolder
}

// Archive 移动文件，目标已存在同名文件时添加时间戳
func (a *FileArchiver) Archive(sourcePath string) (string, error) {
	a.mutex.Lock()
	defer a.mutex.Unlock()

	filename := filepath.Base(sourcePath)
	targetPath := filepath.Join(a.targetFolder, filename)

	if utils.CheckFileExists(targetPath) {
		ext := filepath.Ext(filename)
		name := strings.TrimSuffix(filename, ext)
		timestamp := a.now().Format("20060102150405")
		targetPath = filepath.Join(a.targetFolder, fmt.Sprintf("%s_%s%s", name, timestamp, ext))

		for i := 1; utils.CheckFileExists(targetPath); i++ {
			targetPath = filepath.Join(a.targetFolder, fmt.Sprintf("%s_%s_%d%s", name, timestamp, i, ext))
		}
	}

	if err := utils.MoveFile(sourcePath, targetPath); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return "", err
		}
		return "", utils.NewError(fmt.Sprintf("移动文件失败 %s -> %s", sourcePath, targetPath), err)
	}

	utils.Info("文件已归档: %s -> %s", sourcePath, targetPath)
	return targetPath, nil
}
