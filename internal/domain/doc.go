// Package domain contains the core business entities of the task log: users
// and their roles, the authenticated principal, and technician tasks. It is
// independent of storage, transport and notification infrastructure.
package domain
