package client

import (
	"errors"
	"flag"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// Config 客户端配置：默认值 → .env / 环境变量（WORLDVIEW_*）→ 命令行参数，后者覆盖前者
type Config struct {
	ServerURL      string
	Username       string
	ViewportWidth  int
	ViewportHeight int
	SpriteSize     int
	Background     string // 世界背景图路径（决定世界大小）
	LogFile        string
	Debug          bool
	DebugAddr      string // 调试 HTTP 监听地址，空则不开启
	AssetWorkers   int
	Headless       bool
	SnapshotPath   string // 无窗口模式退出时写出的 PNG 快照
	ReadLimit      int64  // 单条入站消息字节上限
}

func DefaultConfig() Config {
	return Config{
		ServerURL:      "ws://localhost:8080/ws",
		ViewportWidth:  800,
		ViewportHeight: 600,
		SpriteSize:     DefaultSpriteSize,
		LogFile:        "worldview.log",
		AssetWorkers:   4,
		ReadLimit:      DefaultReadLimit,
	}
}

const envPrefix = "WORLDVIEW_"

// LoadConfig 读取配置；envFile 为空时尝试当前目录的 .env（不存在不算错误）
func LoadConfig(envFile string, args []string) (Config, error) {
	if envFile == "" {
		envFile = ".env"
	}
	if err := godotenv.Load(envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Config{}, fmt.Errorf("load %s: %w", envFile, err)
	}

	cfg := DefaultConfig()
	if err := cfg.applyEnv(os.Getenv); err != nil {
		return Config{}, err
	}

	set := flag.NewFlagSet("worldview", flag.ContinueOnError)
	set.StringVar(&cfg.ServerURL, "url", cfg.ServerURL, "server websocket url, e.g. ws://localhost:8080/ws")
	set.StringVar(&cfg.Username, "name", cfg.Username, "username to join with")
	set.IntVar(&cfg.ViewportWidth, "width", cfg.ViewportWidth, "viewport width in pixels")
	set.IntVar(&cfg.ViewportHeight, "height", cfg.ViewportHeight, "viewport height in pixels")
	set.IntVar(&cfg.SpriteSize, "sprite", cfg.SpriteSize, "sprite edge length in pixels")
	set.StringVar(&cfg.Background, "background", cfg.Background, "world background image")
	set.StringVar(&cfg.LogFile, "log", cfg.LogFile, "log file path")
	set.BoolVar(&cfg.Debug, "debug", cfg.Debug, "debug logging to stderr")
	set.StringVar(&cfg.DebugAddr, "debug-addr", cfg.DebugAddr, "debug http listen address, e.g. :6060")
	set.IntVar(&cfg.AssetWorkers, "asset-workers", cfg.AssetWorkers, "concurrent sprite decoders")
	set.BoolVar(&cfg.Headless, "headless", cfg.Headless, "run without a window")
	set.StringVar(&cfg.SnapshotPath, "snapshot", cfg.SnapshotPath, "headless: write the last frame as png on exit")
	set.Int64Var(&cfg.ReadLimit, "read-limit", cfg.ReadLimit, "max inbound message size in bytes")
	if err := set.Parse(args); err != nil {
		return Config{}, err
	}
	return cfg, cfg.Validate()
}

func (c *Config) applyEnv(getenv func(string) string) error {
	str := func(name string, dst *string) {
		if v := getenv(envPrefix + name); v != "" {
			*dst = v
		}
	}
	num := func(name string, dst *int) error {
		v := getenv(envPrefix + name)
		if v == "" {
			return nil
		}
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%s%s: %w", envPrefix, name, err)
		}
		*dst = n
		return nil
	}
	flg := func(name string, dst *bool) error {
		v := getenv(envPrefix + name)
		if v == "" {
			return nil
		}
		b, err := strconv.ParseBool(strings.TrimSpace(v))
		if err != nil {
			return fmt.Errorf("%s%s: %w", envPrefix, name, err)
		}
		*dst = b
		return nil
	}

	str("URL", &c.ServerURL)
	str("NAME", &c.Username)
	str("BACKGROUND", &c.Background)
	str("LOG", &c.LogFile)
	str("DEBUG_ADDR", &c.DebugAddr)
	str("SNAPSHOT", &c.SnapshotPath)
	for name, dst := range map[string]*int{
		"WIDTH":         &c.ViewportWidth,
		"HEIGHT":        &c.ViewportHeight,
		"SPRITE":        &c.SpriteSize,
		"ASSET_WORKERS": &c.AssetWorkers,
	} {
		if err := num(name, dst); err != nil {
			return err
		}
	}
	if v := getenv(envPrefix + "READ_LIMIT"); v != "" {
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return fmt.Errorf("%sREAD_LIMIT: %w", envPrefix, err)
		}
		c.ReadLimit = n
	}
	if err := flg("DEBUG", &c.Debug); err != nil {
		return err
	}
	return flg("HEADLESS", &c.Headless)
}

// Validate 检查必填项与尺寸
func (c Config) Validate() error {
	if c.ServerURL == "" {
		return fmt.Errorf("config: server url is required")
	}
	if c.Username == "" {
		return fmt.Errorf("config: username is required")
	}
	if c.ViewportWidth <= 0 || c.ViewportHeight <= 0 {
		return fmt.Errorf("config: invalid viewport %dx%d", c.ViewportWidth, c.ViewportHeight)
	}
	if c.SpriteSize <= 0 {
		return fmt.Errorf("config: invalid sprite size %d", c.SpriteSize)
	}
	if c.AssetWorkers <= 0 {
		return fmt.Errorf("config: asset workers must be > 0")
	}
	if c.ReadLimit <= 0 {
		return fmt.Errorf("config: read limit must be > 0")
	}
	return nil
}
