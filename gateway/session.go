// gateway/session.go
package gateway

import (
	"errors"

	"github.com/sapogames/roomkit/games"
)

// ErrEmptyResponse is returned when the backend answers a call with an
// empty or null body where a payload was expected.
var ErrEmptyResponse = errors.New("backend returned an empty response")

// ErrMalformedSession is returned when a create/join response is missing
// one of the identity fields. It guards the session store against
// persisting an unusable record.
var ErrMalformedSession = errors.New("backend response is missing the expected session fields")

// ParseSession validates the identity payload of a create or join call.
// All four fields must be non-empty strings.
func ParseSession(sess games.Session) (*games.Session, error) {
	if sess.RoomCode == "" || sess.PlayerID == "" || sess.PlayerSecret == "" || sess.Nickname == "" {
		return nil, ErrMalformedSession
	}
	out := sess
	return &out, nil
}
