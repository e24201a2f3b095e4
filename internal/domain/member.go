package domain

import "strings"

// Member is a person that can be assigned to tasks.
type Member struct {
	ID        string `json:"id" yaml:"id"`
	Name      string `json:"name" yaml:"name"`
	AvatarURL string `json:"avatar_url,omitempty" yaml:"avatar_url,omitempty"`
}

// NewMember constructs a validated member.
func NewMember(id, name, avatarURL string) (Member, error) {
	id = strings.TrimSpace(id)
	name = strings.TrimSpace(name)
	if id == "" {
		return Member{}, ErrInvalidID
	}
	if name == "" {
		return Member{}, ErrInvalidName
	}
	return Member{ID: id, Name: name, AvatarURL: strings.TrimSpace(avatarURL)}, nil
}

// Initials returns up to two upper-case initials for compact rendering.
func (m Member) Initials() string {
	fields := strings.Fields(m.Name)
	switch len(fields) {
	case 0:
		return "?"
	case 1:
		r := []rune(fields[0])
		if len(r) > 1 {
			return strings.ToUpper(string(r[:2]))
		}
		return strings.ToUpper(string(r))
	default:
		first := []rune(fields[0])
		last := []rune(fields[len(fields)-1])
		return strings.ToUpper(string(first[0]) + string(last[0]))
	}
}

func normalizeMembers(in []Member) ([]Member, error) {
	if len(in) == 0 {
		return nil, nil
	}
	out := make([]Member, 0, len(in))
	seen := map[string]struct{}{}
	for _, raw := range in {
		m, err := NewMember(raw.ID, raw.Name, raw.AvatarURL)
		if err != nil {
			return nil, err
		}
		if _, ok := seen[m.ID]; ok {
			continue
		}
		seen[m.ID] = struct{}{}
		out = append(out, m)
	}
	return out, nil
}
