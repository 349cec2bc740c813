package client

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"net/url"
	"os"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/remeh/sizedwaitgroup"
	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/webp"
)

// DecodeFunc 将图片源解码为可绘制句柄
type DecodeFunc func(src string) (Image, error)

// assetLoaded 解码完成后投递回会话收件箱，在逻辑线程中写入缓存
type assetLoaded struct {
	key SpriteKey
	img Image
	err error
}

// AssetLoader 并发解码精灵帧（并发度受 sizedwaitgroup 限制），
// 结果通过 post 投递，不直接触碰缓存
type AssetLoader struct {
	decode DecodeFunc
	post   func(any)
	wg     sizedwaitgroup.SizedWaitGroup
}

func NewAssetLoader(workers int, decode DecodeFunc, post func(any)) *AssetLoader {
	if workers <= 0 {
		workers = 1
	}
	return &AssetLoader{
		decode: decode,
		post:   post,
		wg:     sizedwaitgroup.New(workers),
	}
}

// Load 异步加载一批请求，立即返回
func (l *AssetLoader) Load(reqs []LoadRequest) {
	if len(reqs) == 0 {
		return
	}
	go func() {
		for _, req := range reqs {
			l.wg.Add()
			go func(req LoadRequest) {
				defer l.wg.Done()
				img, err := l.decodeSafe(req.Source)
				if err != nil {
					Log.Warnf("sprite %s/%s#%d failed to load: %v", req.Key.Avatar, req.Key.Facing, req.Key.Frame, err)
				} else {
					Log.Debugf("sprite %s/%s#%d decoded (%s source)", req.Key.Avatar, req.Key.Facing, req.Key.Frame,
						humanize.Bytes(uint64(len(req.Source))))
				}
				l.post(assetLoaded{key: req.Key, img: img, err: err})
			}(req)
		}
	}()
}

func (l *AssetLoader) decodeSafe(src string) (img Image, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("decode panic: %v", r)
		}
	}()
	return l.decode(src)
}

// Wait 等待所有已启动的解码结束
func (l *AssetLoader) Wait() { l.wg.Wait() }

// DecodeImageSource 解码 data URI（base64 或百分号编码）或本地文件路径
func DecodeImageSource(src string) (image.Image, error) {
	data, err := readImageSource(src)
	if err != nil {
		return nil, err
	}
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("decode image: %w", err)
	}
	return img, nil
}

func readImageSource(src string) ([]byte, error) {
	if src == "" {
		return nil, fmt.Errorf("empty image source")
	}
	if !strings.HasPrefix(src, "data:") {
		return os.ReadFile(src)
	}
	meta, payload, ok := strings.Cut(src[len("data:"):], ",")
	if !ok {
		return nil, fmt.Errorf("data uri without payload")
	}
	if strings.HasSuffix(meta, ";base64") {
		b, err := base64.StdEncoding.DecodeString(payload)
		if err != nil {
			return nil, fmt.Errorf("data uri base64: %w", err)
		}
		return b, nil
	}
	s, err := url.PathUnescape(payload)
	if err != nil {
		return nil, fmt.Errorf("data uri payload: %w", err)
	}
	return []byte(s), nil
}
