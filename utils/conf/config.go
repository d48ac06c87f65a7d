package conf

import (
	"fmt"
	"log"
)

// PreforkConfig 配置
var PreforkConfig *Prefork

// PreforkConfigPath is the file PreforkConfig was loaded from.
var PreforkConfigPath string

// LoadAllConfig 加载顺序要求，不写成init
func LoadAllConfig() {
	conf, path, err := LoadPreforkConfig("prefork")
	if err != nil {
		log.Println(fmt.Sprintf("yaml.load: %s loadYaml err:%s", "prefork", err.Error()))
		return
	}
	PreforkConfig = &conf
	PreforkConfigPath = path
}
