package domain

import "time"

// User is the persisted account. Only SafeUser ever leaves the user store.
type User struct {
	UserID    string    `json:"id" dynamodbav:"user_id"`
	Phone     string    `json:"phone" dynamodbav:"phone"`
	NickName  string    `json:"nick_name" dynamodbav:"nick_name"`
	Icon      string    `json:"icon,omitempty" dynamodbav:"icon,omitempty"`
	CreatedAt time.Time `json:"created" dynamodbav:"created_at"`
	UpdatedAt time.Time `json:"updated" dynamodbav:"updated_at"`
}

// Hash field names of a cached SafeUser.
const (
	FieldID       = "id"
	FieldNickName = "nick_name"
	FieldIcon     = "icon"
)

// SafeUser is the projection of User that may be cached in Redis and
// returned to clients.
type SafeUser struct {
	ID       string `json:"id"`
	NickName string `json:"nick_name"`
	Icon     string `json:"icon,omitempty"`
}

// Safe projects u onto the fields allowed outside the user store.
func (u *User) Safe() *SafeUser {
	return &SafeUser{ID: u.UserID, NickName: u.NickName, Icon: u.Icon}
}

// Fields flattens the projection into a string map. Unset fields are left
// out rather than stored as empty strings.
func (s *SafeUser) Fields() map[string]string {
	fields := make(map[string]string, 3)
	put := func(k, v string) {
		if v != "" {
			fields[k] = v
		}
	}
	put(FieldID, s.ID)
	put(FieldNickName, s.NickName)
	put(FieldIcon, s.Icon)
	return fields
}

// SafeUserFromFields rebuilds a SafeUser from a cached hash. It returns nil
// for an empty map, which is what Redis yields for a missing key.
func SafeUserFromFields(fields map[string]string) *SafeUser {
	if len(fields) == 0 {
		return nil
	}
	return &SafeUser{
		ID:       fields[FieldID],
		NickName: fields[FieldNickName],
		Icon:     fields[FieldIcon],
	}
}
