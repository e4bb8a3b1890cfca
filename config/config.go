package config

// Initialize 触发 config 包内各文件的 init() 注册
// main 中 import 本包并调用，保证所有配置项在 InitConfig 之前登记完毕。
func Initialize() {
}
