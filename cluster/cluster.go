// Package cluster accesses the key-value store shared by every Easegress
// instance in the cluster.
//
// A missing key reads as the zero value. Every value is stored as a string,
// so integers and floats are kept in their decimal form.
package cluster

import (
	"github.com/easegress-io/easegress-go-sdk/internal/abi"
	"github.com/easegress-io/easegress-go-sdk/internal/hostcall"
)

// GetBinary returns the raw value under key.
func GetBinary(key string) []byte {
	return abi.TakeBytes(abi.WithText(key, hostcall.ClusterGetBinary))
}

// PutBinary stores value under key.
func PutBinary(key string, value []byte) {
	abi.WithTextAndBytes(key, value, abi.Void2(hostcall.ClusterPutBinary))
}

// GetString returns the value under key as a string.
func GetString(key string) string {
	return abi.TakeText(abi.WithText(key, hostcall.ClusterGetString))
}

// PutString stores value under key.
func PutString(key, value string) {
	abi.WithTexts(key, value, abi.Void2(hostcall.ClusterPutString))
}

// GetInteger returns the integer under key. A value that is not an
// integer faults the instance.
func GetInteger(key string) int64 {
	return abi.WithText(key, hostcall.ClusterGetInteger)
}

// PutInteger stores value under key.
func PutInteger(key string, value int64) {
	abi.WithText(key, func(k uint32) struct{} {
		hostcall.ClusterPutInteger(k, value)
		return struct{}{}
	})
}

// AddInteger atomically adds delta to the value under key and returns the
// result.
func AddInteger(key string, delta int64) int64 {
	return abi.WithText(key, func(k uint32) int64 {
		return hostcall.ClusterAddInteger(k, delta)
	})
}

// GetFloat returns the float under key. A value that is not a number
// faults the instance.
func GetFloat(key string) float64 {
	return abi.WithText(key, hostcall.ClusterGetFloat)
}

// PutFloat stores value under key.
func PutFloat(key string, value float64) {
	abi.WithText(key, func(k uint32) struct{} {
		hostcall.ClusterPutFloat(k, value)
		return struct{}{}
	})
}

// AddFloat atomically adds delta to the value under key and returns the
// result.
func AddFloat(key string, delta float64) float64 {
	return abi.WithText(key, func(k uint32) float64 {
		return hostcall.ClusterAddFloat(k, delta)
	})
}

// CountKey returns the number of keys starting with prefix.
func CountKey(prefix string) int32 {
	return abi.WithText(prefix, hostcall.ClusterCountKey)
}
