package conf

import (
	"io/ioutil"

	"gopkg.in/yaml.v2"
)

// Log 日志
type Log struct {
	Dir string `yaml:"dir"` //日志目录
}

// Prefork 配置文件模型
type Prefork struct {
	Listen    string `yaml:"listen"`    //监听地址
	Workers   int    `yaml:"workers"`   //工作进程数
	Daemon    bool   `yaml:"daemon"`    //是否后台运行
	PidFile   string `yaml:"pidFile"`   //pid文件
	NoChdir   bool   `yaml:"noChdir"`   //不切换到根目录
	Umask     string `yaml:"umask"`     //八进制, 如022
	KeepStdio bool   `yaml:"keepStdio"` //保留标准输入输出, 调试用
	MaxConns  int    `yaml:"maxConns"`  //每个工作进程的最大连接数
	Proto     string `yaml:"proto"`     //tcp 或 ws
	Debug     int    `yaml:"debug"`     //调试级别
	Log       Log    `yaml:"log"`
}

// LoadPreforkConfig 加载配置
func LoadPreforkConfig(configName string) (cnf Prefork, configPath string, err error) {
	configPath, err = getPath(configName + ".yaml")
	if err != nil {
		return cnf, "", err
	}
	cnf, err = LoadFile(configPath)
	return cnf, configPath, err
}

// LoadFile reads and parses one config file.
func LoadFile(configPath string) (Prefork, error) {
	data, err := ioutil.ReadFile(configPath)
	if err != nil {
		return Prefork{}, err
	}
	return ParsePrefork(data)
}

// ParsePrefork parses YAML config data.
func ParsePrefork(data []byte) (Prefork, error) {
	t := Prefork{}
	err := yaml.UnmarshalStrict(data, &t)
	return t, err
}
