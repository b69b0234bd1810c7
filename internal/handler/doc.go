// Package handler 按业务域划分 HTTP 处理器子包：
// booking 为公开预订接口，pricing 为公开报价接口，admin 为管理后台接口。
//
// 本文件使 internal/handler 成为合法的 Go 包，便于 swag init 等工具扫描。
package handler
