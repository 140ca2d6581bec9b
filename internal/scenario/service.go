package scenario

import "fmt"

var defaultCatalog = []Scenario{
	{Key: FreeKey, Title: "🗣️ Free Chat"},
	{
		Key:      "school",
		Title:    "🏫 At School",
		Prompt:   "You are a friendly teacher.",
		Greeting: "Good morning! What's your name?",
	},
	{
		Key:      "store",
		Title:    "🛒 At the Store",
		Prompt:   "You are a shopkeeper.",
		Greeting: "Welcome! What do you want to buy today?",
	},
	{
		Key:      "home",
		Title:    "🏠 At Home",
		Prompt:   "You are a family member.",
		Greeting: "Who do you live with?",
	},
}

type service struct {
	order []string
	byKey map[string]Scenario
}

func NewService() Service {
	s, err := NewCatalog(defaultCatalog)
	if err != nil {
		panic(err)
	}
	return s
}

// NewCatalog copies items, so later edits to the slice do not leak in.
func NewCatalog(items []Scenario) (Service, error) {
	s := &service{byKey: make(map[string]Scenario, len(items))}
	for _, it := range items {
		if it.Key == "" {
			return nil, fmt.Errorf("scenario with empty key")
		}
		if _, dup := s.byKey[it.Key]; dup {
			return nil, fmt.Errorf("duplicate scenario %q", it.Key)
		}
		s.byKey[it.Key] = it
		s.order = append(s.order, it.Key)
	}
	return s, nil
}

func (s *service) List() []Scenario {
	out := make([]Scenario, 0, len(s.order))
	for _, k := range s.order {
		out = append(out, s.byKey[k])
	}
	return out
}

func (s *service) Get(key string) (Scenario, error) {
	sc, ok := s.byKey[key]
	if !ok {
		return Scenario{}, fmt.Errorf("%w: %s", ErrNotFound, key)
	}
	return sc, nil
}
