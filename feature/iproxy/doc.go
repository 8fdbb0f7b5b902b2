// Package iproxy adapts the iproxy.online API to the reconcile.Provider
// interface.
//
// The API reports each device with a combined plan string
// ("<plan> active till <DD.MM.YYYY>") and a combined name label
// ("<display name> - <DD/MM/YYYY>"); both are split here so the engine only
// sees normalized fields. Endpoint lists are fetched per device from
// /connections/{id}/proxies.
package iproxy
