package pairing

import (
	"crypto/sha256"
	"encoding/base64"
	"strings"
)

// QR is the out-of-band payload a responder displays and an initiator
// scans: the application/shard identity that derives the content topic, the
// responder's pre-message ephemeral public key, and the responder's
// static-key commitment opened later in message 2.
type QR struct {
	ApplicationName    string
	ApplicationVersion string
	ShardID            string
	EphemeralPublicKey [32]byte
	CommittedStaticKey [32]byte
}

// Serialize renders the QR as 5 colon-separated base64url(padded) fields.
func (q QR) Serialize() string {
	enc := func(b []byte) string { return base64.URLEncoding.EncodeToString(b) }
	fields := []string{
		enc([]byte(q.ApplicationName)),
		enc([]byte(q.ApplicationVersion)),
		enc([]byte(q.ShardID)),
		enc(q.EphemeralPublicKey[:]),
		enc(q.CommittedStaticKey[:]),
	}
	return strings.Join(fields, ":")
}

// ParseQR deserializes a QR string, rejecting anything that is not exactly 5
// colon-separated base64url fields with 32-byte key fields.
func ParseQR(s string) (QR, error) {
	fields := strings.Split(s, ":")
	if len(fields) != 5 {
		return QR{}, ErrInvalidQR
	}
	decoded := make([][]byte, len(fields))
	for i, f := range fields {
		b, err := base64.URLEncoding.DecodeString(f)
		if err != nil {
			return QR{}, ErrInvalidQR
		}
		decoded[i] = b
	}
	if len(decoded[3]) != 32 || len(decoded[4]) != 32 {
		return QR{}, ErrInvalidQR
	}
	var q QR
	q.ApplicationName = string(decoded[0])
	q.ApplicationVersion = string(decoded[1])
	q.ShardID = string(decoded[2])
	copy(q.EphemeralPublicKey[:], decoded[3])
	copy(q.CommittedStaticKey[:], decoded[4])
	return q, nil
}

// ContentTopic derives the pub/sub content topic for a pairing session:
// /<applicationName>/<applicationVersion>/<shardId>/proto.
func ContentTopic(applicationName, applicationVersion, shardID string) string {
	return "/" + applicationName + "/" + applicationVersion + "/" + shardID + "/proto"
}

// qrMessageNametag derives the nametag used for handshake message 1 from the
// QR contents themselves: SHA-256 of the serialized QR keeps both parties
// computing the same value from exactly the bytes that were physically
// exchanged, without needing a separate random field on the wire.
func qrMessageNametag(qr QR) [16]byte {
	sum := sha256.Sum256([]byte(qr.Serialize()))
	var tag [16]byte
	copy(tag[:], sum[:16])
	return tag
}
