package auth

import (
	"context"
	"encoding/json"
	"fmt"
	"maps"
	"net/http"
	"strconv"

	"github.com/goliatone/go-errors"
	"github.com/nyaruka/phonenumbers"
	"github.com/visacheck/go-auth/sdk"
)

// RememberTokenAttribute is the attribute holding the "remember me" token
const RememberTokenAttribute = "remember_token"

// Attributes is the raw attribute bag returned by the API
type Attributes map[string]any

// User wraps the attributes the API returns for an account.
// The identifier and password hash are kept as typed fields, anything else
// stays in the attribute bag as received.
type User struct {
	id         string
	password   string
	attributes Attributes
	client     *sdk.Client
}

var _ Authenticatable = (*User)(nil)

// NewUser creates a user record out of API attributes. The client is shared
// with the caller and is used to lazily load relations.
func NewUser(attributes Attributes, client *sdk.Client) *User {
	u := &User{client: client}
	return u.SetAttributes(attributes)
}

// NewUserFromJSON decodes a JSON object into a user record
func NewUserFromJSON(data []byte, client *sdk.Client) (*User, error) {
	attrs, err := sdk.DecodeObject(data)
	if err != nil {
		return nil, errors.Wrap(err, errors.CategoryBadInput, "invalid user payload")
	}
	return NewUser(attrs, client), nil
}

// SetAttributes replaces the attribute bag wholesale
func (u *User) SetAttributes(attributes Attributes) *User {
	if attributes == nil {
		attributes = Attributes{}
	}
	u.attributes = attributes
	u.id = stringValue(attributes["id"])
	u.password = stringValue(attributes["password"])
	return u
}

// Client returns the API client the record was loaded with
func (u *User) Client() *sdk.Client {
	return u.client
}

func (u *User) AuthIdentifier() string {
	return u.id
}

func (u *User) AuthPassword() string {
	return u.password
}

func (u *User) RememberTokenName() string {
	return RememberTokenAttribute
}

func (u *User) RememberToken() string {
	return stringValue(u.attributes[RememberTokenAttribute])
}

func (u *User) Email() string {
	return stringValue(u.attributes["email"])
}

// Attribute returns the raw value for key. The boolean is false when the
// key is absent, which is not the same as a null value.
func (u *User) Attribute(key string) (any, bool) {
	v, ok := u.attributes[key]
	return v, ok
}

// RouteNotificationFor returns the address notifications on channel go to.
// Only "sms" is known; it maps to the phone attribute.
func (u *User) RouteNotificationFor(channel string) string {
	switch channel {
	case "sms":
		return stringValue(u.attributes["phone"])
	default:
		return ""
	}
}

// PhoneE164 returns the phone attribute normalized to E.164. region is the
// default region used for numbers without a country prefix.
func (u *User) PhoneE164(region string) (string, error) {
	phone := u.RouteNotificationFor("sms")
	if phone == "" {
		return "", errors.New("user has no phone number", errors.CategoryNotFound).
			WithMetadata(map[string]any{"user_id": u.id})
	}

	num, err := phonenumbers.Parse(phone, region)
	if err != nil {
		return "", errors.Wrap(err, errors.CategoryBadInput, "invalid phone number").
			WithMetadata(map[string]any{"user_id": u.id, "region": region})
	}

	return phonenumbers.Format(num, phonenumbers.E164), nil
}

// Company returns the data of the company relation.
//
// When the relation is not loaded and fetchIfMissing is set, the profile is
// requested again with the company included and, on success, replaces every
// attribute of the record. A failed fetch returns ErrCompanyUnavailable and
// leaves the record untouched. A missing relation yields an empty map.
func (u *User) Company(ctx context.Context, fetchIfMissing bool) (Attributes, error) {
	if _, ok := u.attributes["company"]; !ok && fetchIfMissing {
		if u.client == nil {
			return nil, ErrCompanyUnavailable
		}

		resp, err := u.client.CreateProfileService().
			AddQueryArgument("include", "company").
			Send(ctx, http.MethodGet)
		if err != nil {
			return nil, wrapAs(err, ErrCompanyUnavailable)
		}
		if !resp.IsSuccessful() {
			return nil, ErrCompanyUnavailable
		}

		u.SetAttributes(resp.Data())
	}

	company := asMap(u.attributes["company"])
	data := asMap(company["data"])
	if data == nil {
		return Attributes{}, nil
	}

	return data, nil
}

// CompanyAs decodes the company data into out, an object view over Company
func (u *User) CompanyAs(ctx context.Context, fetchIfMissing bool, out any) error {
	data, err := u.Company(ctx, fetchIfMissing)
	if err != nil {
		return err
	}

	raw, err := json.Marshal(data)
	if err != nil {
		return wrapAs(err, ErrSerialization)
	}

	if err := json.Unmarshal(raw, out); err != nil {
		return errors.Wrap(err, errors.CategoryBadInput, "unable to decode company data")
	}

	return nil
}

// ToMap returns a copy of the current attributes
func (u *User) ToMap() Attributes {
	return maps.Clone(u.attributes)
}

// ToJSON encodes the current attributes
func (u *User) ToJSON() ([]byte, error) {
	raw, err := json.Marshal(map[string]any(u.attributes))
	if err != nil {
		return nil, wrapAs(err, ErrSerialization).
			WithMetadata(map[string]any{"user_id": u.id})
	}
	return raw, nil
}

func (u *User) MarshalJSON() ([]byte, error) {
	return u.ToJSON()
}

func (u *User) UnmarshalJSON(data []byte) error {
	attrs, err := sdk.DecodeObject(data)
	if err != nil {
		return err
	}
	u.SetAttributes(attrs)
	return nil
}

func asMap(v any) map[string]any {
	switch m := v.(type) {
	case map[string]any:
		return m
	case Attributes:
		return m
	default:
		return nil
	}
}

func stringValue(v any) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return val
	case json.Number:
		return val.String()
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(val), 'f', -1, 32)
	case int:
		return strconv.Itoa(val)
	case int64:
		return strconv.FormatInt(val, 10)
	default:
		return fmt.Sprint(val)
	}
}
