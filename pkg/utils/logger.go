package utils

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/sirupsen/logrus"
	"gopkg.in/natefinch/lumberjack.v2"
)

// 日志级别常量
const (
	LogLevelVerbose = "VERBOSE"
	LogLevelNormal  = "INFO"
	LogLevelQuiet   = "WARN"
)

var (
	// Log 全局日志实例
	Log *logrus.Logger
	// 定义一个全局变量，用于标记是否启用了终端进度条
	terminalProgressEnabled bool
	// 当前使用的滚动日志文件
	rotator *lumberjack.Logger
)

// InitLogger 初始化日志系统
// level: 日志级别 (VERBOSE/INFO/WARN/ERROR)
// logFile: 日志文件路径，空字符串表示仅输出到控制台
func InitLogger(level string, logFile string) error {
	return InitLoggerWithFormat(level, logFile, "text")
}

// InitLoggerWithFormat 初始化日志系统并指定输出格式 (text/json)
func InitLoggerWithFormat(level string, logFile string, format string) error {
	closeRotator()

	// 创建logger实例
	Log = logrus.New()

	// 设置日志格式
	switch strings.ToLower(format) {
	case "json":
		Log.SetFormatter(&logrus.JSONFormatter{TimestampFormat: "2006-01-02 15:04:05"})
	default:
		Log.SetFormatter(&logrus.TextFormatter{
			FullTimestamp:   true,
			TimestampFormat: "2006-01-02 15:04:05",
		})
	}

	// 设置日志输出
	if terminalProgressEnabled {
		// 进度条占用终端时日志只写文件
		if logFile == "" {
			logFile = filepath.Join(os.TempDir(), "caption-sentencer.log")
		}
		if w, err := openRotator(logFile); err == nil {
			Log.SetOutput(w)
		} else {
			Log.SetOutput(io.Discard)
		}
	} else if logFile != "" {
		w, err := openRotator(logFile)
		if err != nil {
			return err
		}
		// 同时输出到文件和控制台
		Log.SetOutput(io.MultiWriter(os.Stdout, w))
	} else {
		Log.SetOutput(os.Stdout)
	}

	Log.SetLevel(ParseLevel(level))
	return nil
}

// ParseLevel 将配置中的级别名转换为logrus级别，无法识别时为Info
func ParseLevel(level string) logrus.Level {
	switch strings.ToUpper(level) {
	case LogLevelVerbose:
		return logrus.DebugLevel
	case LogLevelNormal:
		return logrus.InfoLevel
	case LogLevelQuiet:
		return logrus.WarnLevel
	}
	if lvl, err := logrus.ParseLevel(strings.ToLower(level)); err == nil {
		return lvl
	}
	return logrus.InfoLevel
}

func openRotator(logFile string) (io.Writer, error) {
	// 确保日志目录存在
	if err := os.MkdirAll(filepath.Dir(logFile), 0755); err != nil {
		return nil, fmt.Errorf("创建日志目录失败: %w", err)
	}

	rotator = &lumberjack.Logger{
		Filename:   logFile,
		MaxSize:    20, // megabytes
		MaxBackups: 3,
		MaxAge:     30,
	}
	// lumberjack 延迟到首次写入才创建文件，这里提前打开
	if _, err := rotator.Write(nil); err != nil {
		rotator = nil
		return nil, fmt.Errorf("打开日志文件失败: %w", err)
	}
	return rotator, nil
}

func closeRotator() {
	if rotator != nil {
		rotator.Close()
		rotator = nil
	}
}

// EnableTerminalProgress 启用终端进度条模式 - 调用此函数后日志将不再输出到终端
func EnableTerminalProgress(logFile string) {
	terminalProgressEnabled = true
	level := logrus.InfoLevel
	if Log != nil {
		level = Log.GetLevel()
	}
	InitLogger(level.String(), logFile)
}

// DisableTerminalProgress 禁用终端进度条模式 - 调用此函数后日志将恢复到终端输出
func DisableTerminalProgress() {
	terminalProgressEnabled = false
	if Log != nil {
		Log.SetOutput(os.Stdout)
	}
	closeRotator()
}

// Debug 输出调试日志
func Debug(format string, args ...interface{}) {
	if Log != nil {
		if len(args) > 0 {
			Log.Debugf(format, args...)
		} else {
			Log.Debug(format)
		}
	}
}

// Info 输出信息日志
func Info(format string, args ...interface{}) {
	if Log != nil {
		if len(args) > 0 {
			Log.Infof(format, args...)
		} else {
			Log.Info(format)
		}
	}
}

// Warn 输出警告日志
func Warn(format string, args ...interface{}) {
	if Log != nil {
		if len(args) > 0 {
			Log.Warnf(format, args...)
		} else {
			Log.Warn(format)
		}
	}
}

// Error 输出错误日志
func Error(format string, args ...interface{}) {
	if Log != nil {
		if len(args) > 0 {
			Log.Errorf(format, args...)
		} else {
			Log.Error(format)
		}
	}
}

// WithField 创建带字段的日志条目
func WithField(key string, value interface{}) *logrus.Entry {
	return logger().WithField(key, value)
}

// WithFields 创建带多个字段的日志条目
func WithFields(fields logrus.Fields) *logrus.Entry {
	return logger().WithFields(fields)
}

// Logger 返回全局日志实例，未初始化时返回丢弃输出的实例
func Logger() *logrus.Logger {
	return logger()
}

func logger() *logrus.Logger {
	if Log != nil {
		return Log
	}
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}
