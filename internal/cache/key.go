package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"sort"
	"strings"

	"github.com/yourusername/codetrack/scraper-service/internal/models"
)

// ProfileLink is one (platform, username) pair contributing to a cache key
type ProfileLink struct {
	Platform models.Platform
	Username string
}

type canonicalKey struct {
	Student  string         `json:"student"`
	Profiles []canonicalRef `json:"profiles"`
}

type canonicalRef struct {
	Platform models.Platform `json:"platform"`
	Username string          `json:"username"`
}

// DeriveKey hashes the student identifier and linked usernames into a
// cache key. Links are put into the fixed platform order first, so the
// order the caller lists them in does not matter, while changing any
// username produces a new key. Links with empty usernames are ignored.
func DeriveKey(studentID string, links []ProfileLink) string {
	refs := make([]canonicalRef, 0, len(links))
	for _, l := range links {
		username := strings.TrimSpace(l.Username)
		if username == "" {
			continue
		}
		refs = append(refs, canonicalRef{Platform: l.Platform, Username: username})
	}

	sort.SliceStable(refs, func(i, j int) bool {
		oi, oj := platformOrder(refs[i].Platform), platformOrder(refs[j].Platform)
		if oi != oj {
			return oi < oj
		}
		return refs[i].Username < refs[j].Username
	})

	data, _ := json.Marshal(canonicalKey{
		Student:  strings.TrimSpace(studentID),
		Profiles: refs,
	})
	hash := sha256.Sum256(data)
	return hex.EncodeToString(hash[:])
}

// LinksFromMap converts a platform->username map to links
func LinksFromMap(usernames map[models.Platform]string) []ProfileLink {
	links := make([]ProfileLink, 0, len(usernames))
	for p, u := range usernames {
		links = append(links, ProfileLink{Platform: p, Username: u})
	}
	return links
}

func platformOrder(p models.Platform) int {
	for i, candidate := range models.BatchOrder {
		if candidate == p {
			return i
		}
	}
	return len(models.BatchOrder)
}
