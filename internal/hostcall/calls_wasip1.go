//go:build wasip1

package hostcall

// Instance-wide operations.

//go:wasmimport easegress host_add_tag
func AddTag(tag uint32)

//go:wasmimport easegress host_log
func Log(level int32, msg uint32)

//go:wasmimport easegress host_get_unix_time_in_ms
func GetUnixTimeInMs() int64

//go:wasmimport easegress host_rand
func Rand() float64

// Request operations.

//go:wasmimport easegress host_req_get_real_ip
func ReqGetRealIP() uint32

//go:wasmimport easegress host_req_get_scheme
func ReqGetScheme() uint32

//go:wasmimport easegress host_req_get_proto
func ReqGetProto() uint32

//go:wasmimport easegress host_req_get_method
func ReqGetMethod() uint32

//go:wasmimport easegress host_req_set_method
func ReqSetMethod(method uint32)

//go:wasmimport easegress host_req_get_host
func ReqGetHost() uint32

//go:wasmimport easegress host_req_set_host
func ReqSetHost(host uint32)

//go:wasmimport easegress host_req_get_path
func ReqGetPath() uint32

//go:wasmimport easegress host_req_set_path
func ReqSetPath(path uint32)

//go:wasmimport easegress host_req_get_escaped_path
func ReqGetEscapedPath() uint32

//go:wasmimport easegress host_req_get_query
func ReqGetQuery() uint32

//go:wasmimport easegress host_req_set_query
func ReqSetQuery(query uint32)

//go:wasmimport easegress host_req_get_fragment
func ReqGetFragment() uint32

//go:wasmimport easegress host_req_get_header
func ReqGetHeader(name uint32) uint32

//go:wasmimport easegress host_req_get_all_header
func ReqGetAllHeader() uint32

//go:wasmimport easegress host_req_set_header
func ReqSetHeader(name, value uint32)

//go:wasmimport easegress host_req_set_all_header
func ReqSetAllHeader(header uint32)

//go:wasmimport easegress host_req_add_header
func ReqAddHeader(name, value uint32)

//go:wasmimport easegress host_req_del_header
func ReqDelHeader(name uint32)

//go:wasmimport easegress host_req_get_cookie
func ReqGetCookie(name uint32) uint32

//go:wasmimport easegress host_req_get_all_cookie
func ReqGetAllCookie() uint32

//go:wasmimport easegress host_req_add_cookie
func ReqAddCookie(cookie uint32)

//go:wasmimport easegress host_req_get_body
func ReqGetBody() uint32

//go:wasmimport easegress host_req_set_body
func ReqSetBody(body uint32)

// Response operations.

//go:wasmimport easegress host_resp_get_status_code
func RespGetStatusCode() int32

//go:wasmimport easegress host_resp_set_status_code
func RespSetStatusCode(code int32)

//go:wasmimport easegress host_resp_get_header
func RespGetHeader(name uint32) uint32

//go:wasmimport easegress host_resp_get_all_header
func RespGetAllHeader() uint32

//go:wasmimport easegress host_resp_set_header
func RespSetHeader(name, value uint32)

//go:wasmimport easegress host_resp_set_all_header
func RespSetAllHeader(header uint32)

//go:wasmimport easegress host_resp_add_header
func RespAddHeader(name, value uint32)

//go:wasmimport easegress host_resp_del_header
func RespDelHeader(name uint32)

//go:wasmimport easegress host_resp_set_cookie
func RespSetCookie(cookie uint32)

//go:wasmimport easegress host_resp_get_body
func RespGetBody() uint32

//go:wasmimport easegress host_resp_set_body
func RespSetBody(body uint32)

// Cluster key-value operations.

//go:wasmimport easegress host_cluster_get_binary
func ClusterGetBinary(key uint32) uint32

//go:wasmimport easegress host_cluster_put_binary
func ClusterPutBinary(key, value uint32)

//go:wasmimport easegress host_cluster_get_string
func ClusterGetString(key uint32) uint32

//go:wasmimport easegress host_cluster_put_string
func ClusterPutString(key, value uint32)

//go:wasmimport easegress host_cluster_get_integer
func ClusterGetInteger(key uint32) int64

//go:wasmimport easegress host_cluster_put_integer
func ClusterPutInteger(key uint32, value int64)

//go:wasmimport easegress host_cluster_add_integer
func ClusterAddInteger(key uint32, delta int64) int64

//go:wasmimport easegress host_cluster_get_float
func ClusterGetFloat(key uint32) float64

//go:wasmimport easegress host_cluster_put_float
func ClusterPutFloat(key uint32, value float64)

//go:wasmimport easegress host_cluster_add_float
func ClusterAddFloat(key uint32, delta float64) float64

//go:wasmimport easegress host_cluster_count_key
func ClusterCountKey(prefix uint32) int32
