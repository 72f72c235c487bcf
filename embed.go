// embed.go - 默认配置嵌入声明
// 必须放在项目根目录（与 data/ 同级）
// 因为 //go:embed 指令只能嵌入当前包目录及其子目录的文件
package main

import (
	_ "embed"

	"github.com/decker502/shooter/pkg/config"
)

//go:embed data/shooter.yaml
var defaultConfigYAML []byte

// embeddedConfig 解析随二进制发布的默认配置
//
// 解析失败时退回到代码内置的默认值。
func embeddedConfig() (*config.ShooterConfig, error) {
	cfg, err := config.ParseShooterConfig(defaultConfigYAML)
	if err != nil {
		return config.DefaultShooterConfig(), err
	}
	return cfg, nil
}
