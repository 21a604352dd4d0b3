package security

import gonanoid "github.com/matoous/go-nanoid/v2"

// RoomCodeLength is the length of generated room codes.
const RoomCodeLength = 6

// roomCodeAlphabet drops look-alike characters so codes survive being read aloud.
const roomCodeAlphabet = "23456789ABCDEFGHJKLMNPQRSTUVWXYZabcdefghijkmnpqrstuvwxyz"

// NewRoomCode returns a random room code of RoomCodeLength characters.
func NewRoomCode() (string, error) {
	return gonanoid.Generate(roomCodeAlphabet, RoomCodeLength)
}
