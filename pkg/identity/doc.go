// Package identity owns the anonymous id, device id and external id of the
// current user and issues the identify and alias calls.
//
// The anonymous id is created lazily on first use and persisted through a
// storage.Store until Reset. An alias call is sent at most once per
// transition from "no external id" to "external id known": once an external
// id is recorded, later Identify calls never alias again.
//
// Network calls are submitted to a dispatch.Queue and never block the
// caller. Within Identify the alias call is submitted before the identify
// call, but identify does not wait for alias to finish.
package identity
