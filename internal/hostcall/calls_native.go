//go:build !wasip1

package hostcall

import (
	"github.com/tetratelabs/wazero/api"
)

// Instance-wide operations.

func AddTag(tag uint32) {
	invoke("host_add_tag", uint64(tag))
}

func Log(level int32, msg uint32) {
	invoke("host_log", api.EncodeI32(level), uint64(msg))
}

func GetUnixTimeInMs() int64 {
	return int64(invoke("host_get_unix_time_in_ms"))
}

func Rand() float64 {
	return api.DecodeF64(invoke("host_rand"))
}

// Request operations.

func ReqGetRealIP() uint32 {
	return uint32(invoke("host_req_get_real_ip"))
}

func ReqGetScheme() uint32 {
	return uint32(invoke("host_req_get_scheme"))
}

func ReqGetProto() uint32 {
	return uint32(invoke("host_req_get_proto"))
}

func ReqGetMethod() uint32 {
	return uint32(invoke("host_req_get_method"))
}

func ReqSetMethod(method uint32) {
	invoke("host_req_set_method", uint64(method))
}

func ReqGetHost() uint32 {
	return uint32(invoke("host_req_get_host"))
}

func ReqSetHost(host uint32) {
	invoke("host_req_set_host", uint64(host))
}

func ReqGetPath() uint32 {
	return uint32(invoke("host_req_get_path"))
}

func ReqSetPath(path uint32) {
	invoke("host_req_set_path", uint64(path))
}

func ReqGetEscapedPath() uint32 {
	return uint32(invoke("host_req_get_escaped_path"))
}

func ReqGetQuery() uint32 {
	return uint32(invoke("host_req_get_query"))
}

func ReqSetQuery(query uint32) {
	invoke("host_req_set_query", uint64(query))
}

func ReqGetFragment() uint32 {
	return uint32(invoke("host_req_get_fragment"))
}

func ReqGetHeader(name uint32) uint32 {
	return uint32(invoke("host_req_get_header", uint64(name)))
}

func ReqGetAllHeader() uint32 {
	return uint32(invoke("host_req_get_all_header"))
}

func ReqSetHeader(name, value uint32) {
	invoke("host_req_set_header", uint64(name), uint64(value))
}

func ReqSetAllHeader(header uint32) {
	invoke("host_req_set_all_header", uint64(header))
}

func ReqAddHeader(name, value uint32) {
	invoke("host_req_add_header", uint64(name), uint64(value))
}

func ReqDelHeader(name uint32) {
	invoke("host_req_del_header", uint64(name))
}

func ReqGetCookie(name uint32) uint32 {
	return uint32(invoke("host_req_get_cookie", uint64(name)))
}

func ReqGetAllCookie() uint32 {
	return uint32(invoke("host_req_get_all_cookie"))
}

func ReqAddCookie(cookie uint32) {
	invoke("host_req_add_cookie", uint64(cookie))
}

func ReqGetBody() uint32 {
	return uint32(invoke("host_req_get_body"))
}

func ReqSetBody(body uint32) {
	invoke("host_req_set_body", uint64(body))
}

// Response operations.

func RespGetStatusCode() int32 {
	return api.DecodeI32(invoke("host_resp_get_status_code"))
}

func RespSetStatusCode(code int32) {
	invoke("host_resp_set_status_code", api.EncodeI32(code))
}

func RespGetHeader(name uint32) uint32 {
	return uint32(invoke("host_resp_get_header", uint64(name)))
}

func RespGetAllHeader() uint32 {
	return uint32(invoke("host_resp_get_all_header"))
}

func RespSetHeader(name, value uint32) {
	invoke("host_resp_set_header", uint64(name), uint64(value))
}

func RespSetAllHeader(header uint32) {
	invoke("host_resp_set_all_header", uint64(header))
}

func RespAddHeader(name, value uint32) {
	invoke("host_resp_add_header", uint64(name), uint64(value))
}

func RespDelHeader(name uint32) {
	invoke("host_resp_del_header", uint64(name))
}

func RespSetCookie(cookie uint32) {
	invoke("host_resp_set_cookie", uint64(cookie))
}

func RespGetBody() uint32 {
	return uint32(invoke("host_resp_get_body"))
}

func RespSetBody(body uint32) {
	invoke("host_resp_set_body", uint64(body))
}

// Cluster key-value operations.

func ClusterGetBinary(key uint32) uint32 {
	return uint32(invoke("host_cluster_get_binary", uint64(key)))
}

func ClusterPutBinary(key, value uint32) {
	invoke("host_cluster_put_binary", uint64(key), uint64(value))
}

func ClusterGetString(key uint32) uint32 {
	return uint32(invoke("host_cluster_get_string", uint64(key)))
}

func ClusterPutString(key, value uint32) {
	invoke("host_cluster_put_string", uint64(key), uint64(value))
}

func ClusterGetInteger(key uint32) int64 {
	return int64(invoke("host_cluster_get_integer", uint64(key)))
}

func ClusterPutInteger(key uint32, value int64) {
	invoke("host_cluster_put_integer", uint64(key), api.EncodeI64(value))
}

func ClusterAddInteger(key uint32, delta int64) int64 {
	return int64(invoke("host_cluster_add_integer", uint64(key), api.EncodeI64(delta)))
}

func ClusterGetFloat(key uint32) float64 {
	return api.DecodeF64(invoke("host_cluster_get_float", uint64(key)))
}

func ClusterPutFloat(key uint32, value float64) {
	invoke("host_cluster_put_float", uint64(key), api.EncodeF64(value))
}

func ClusterAddFloat(key uint32, delta float64) float64 {
	return api.DecodeF64(invoke("host_cluster_add_float", uint64(key), api.EncodeF64(delta)))
}

func ClusterCountKey(prefix uint32) int32 {
	return api.DecodeI32(invoke("host_cluster_count_key", uint64(prefix)))
}
