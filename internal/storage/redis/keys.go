package redis

import (
	"fmt"

	"github.com/mcoot/dartsync/internal/model"
)

// Key prefix for all dartsync data
const keyPrefix = "dartsync"

func roomKey(id model.RoomID) string {
	return fmt.Sprintf("%s:room:%s", keyPrefix, id)
}

func matchKey(roomID model.RoomID) string {
	return fmt.Sprintf("%s:match:%s", keyPrefix, roomID)
}

func snapshotKey(roomID model.RoomID) string {
	return fmt.Sprintf("%s:snapshot:%s", keyPrefix, roomID)
}

func sessionKey(token string) string {
	return fmt.Sprintf("%s:session:%s", keyPrefix, token)
}

// roomSessionsIndexKey is the SET of session tokens issued in a room
func roomSessionsIndexKey(roomID model.RoomID) string {
	return fmt.Sprintf("%s:idx:room_sessions:%s", keyPrefix, roomID)
}

// playerSessionsIndexKey is the SET of session tokens issued to one player
func playerSessionsIndexKey(roomID model.RoomID, playerID model.PlayerID) string {
	return fmt.Sprintf("%s:idx:player_sessions:%s:%s", keyPrefix, roomID, playerID)
}
