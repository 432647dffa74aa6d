// Package ports defines the driven interfaces the controller depends on:
// the remote project source and the remote cloud-log source. Concrete
// implementations live under pkg/adapters.
package ports
