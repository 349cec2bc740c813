package viewer

import (
	"github.com/hajimehoshi/ebiten/v2"

	"worldview/client"
)

// Decode 解码精灵帧并转换为 ebiten 图像；供 AssetLoader 在工作协程中调用
func Decode(src string) (client.Image, error) {
	img, err := client.DecodeImageSource(src)
	if err != nil {
		return nil, err
	}
	return ebiten.NewImageFromImage(img), nil
}

// LoadBackground 读取世界背景图
func LoadBackground(path string) (*ebiten.Image, error) {
	img, err := client.DecodeImageSource(path)
	if err != nil {
		return nil, err
	}
	return ebiten.NewImageFromImage(img), nil
}
