package utils

import (
	"fmt"
	"math/rand/v2"
)

var (
	adjectives = []string{
		"amber", "bold", "brisk", "calm", "clever", "crimson", "dapper",
		"eager", "fuzzy", "gentle", "hasty", "jolly", "keen", "lucky",
		"mellow", "nimble", "plucky", "quiet", "rapid", "shiny", "snug",
		"spry", "sturdy", "swift", "tidy", "vivid", "witty", "zesty",
	}
	animals = []string{
		"badger", "bison", "crane", "dingo", "falcon", "ferret", "gecko",
		"heron", "ibex", "jackal", "koala", "lemur", "lynx", "marmot",
		"newt", "otter", "panda", "quail", "raven", "stoat", "tapir",
		"toucan", "viper", "walrus", "wombat", "yak",
	}
)

// NewUsername produces a readable default display name for a fresh
// connection, e.g. "swift-otter-42". Names are not required to be unique.
func NewUsername() string {
	adj := adjectives[rand.IntN(len(adjectives))]
	animal := animals[rand.IntN(len(animals))]
	return fmt.Sprintf("%s-%s-%d", adj, animal, rand.IntN(100))
}
