package auth

// Profile holds the user-profile sub-objects the server returns with a session. Every field is
// independently optional.
type Profile struct {
	User        any
	Addresses   []any
	Emails      []any
	Office      any
	Association any
	License     any
	Phones      []any
}

// State is an immutable snapshot of the session. Values handed to subscribers must be treated as
// read-only.
type State struct {
	Authenticated bool
	Token         string
	ResponseData  any
	Profile       Profile
}

type subscriber struct {
	id uint64
	fn func(State)
}

// Subscribe registers fn to receive every committed State. fn is called synchronously, in
// registration order and in commit order, outside the state lock. fn must not call operations
// that change the session. The returned function removes the subscription.
func (s *Service) Subscribe(fn func(State)) (unsubscribe func()) {
	s.mu.Lock()
	s.nextSubID++
	id := s.nextSubID
	s.subscribers = append(s.subscribers, subscriber{id: id, fn: fn})
	s.mu.Unlock()

	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		for i, sub := range s.subscribers {
			if sub.id == id {
				s.subscribers = append(s.subscribers[:i:i], s.subscribers[i+1:]...)
				return
			}
		}
	}
}

// State returns the current snapshot.
func (s *Service) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

func (s *Service) IsAuthenticated() bool {
	return s.State().Authenticated
}

// update is the only place session state changes. fn mutates a copy which then replaces the
// current snapshot and is broadcast.
func (s *Service) update(fn func(*State)) State {
	s.notifyMu.Lock()
	defer s.notifyMu.Unlock()

	s.mu.Lock()
	next := s.state
	fn(&next)
	if next.Token == "" {
		next = State{}
	}
	s.state = next
	subs := make([]subscriber, len(s.subscribers))
	copy(subs, s.subscribers)
	s.mu.Unlock()

	for _, sub := range subs {
		sub.fn(next)
	}
	return next
}

// UserName returns TbUser.name, falling back to TbUser.username.
func (s *Service) UserName() string {
	return UserName(s.State().Profile.User)
}

func UserName(user any) string {
	if name := stringField(user, "name"); name != "" {
		return name
	}
	return stringField(user, "username")
}
