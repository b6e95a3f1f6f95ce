package service

import "surveystudio/internal/model"

// Partition is a group of routes sharing one access rule
type Partition string

const (
	PartitionPublic Partition = "public"
	PartitionUser   Partition = "user"
	PartitionAdmin  Partition = "admin"
	PartitionBanned Partition = "banned"
)

// Allow decides whether session may enter partition. A nil session is a
// signed-out visitor. Banned users only reach the banned partition.
func Allow(session *model.Session, p Partition) bool {
	if p == PartitionPublic {
		return true
	}
	if session == nil {
		return false
	}
	switch p {
	case PartitionBanned:
		return session.IsBanned
	case PartitionUser:
		return !session.IsBanned
	case PartitionAdmin:
		return !session.IsBanned && session.Role == model.RoleAdmin
	}
	return false
}
