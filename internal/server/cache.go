package server

import (
	"context"
	"sync"

	"github.com/basher83/zammad-mcp/internal/models"
)

// refCache memoizes the closed reference lists. Groups, states and
// priorities change rarely, so one fetch per process is enough until
// the caller explicitly clears the cache.
// A loaded flag marks each list as fetched so a legitimately empty
// result is not refetched on every access.
type refCache struct {
	client zammadAPI

	mu               sync.Mutex
	groups           []models.Group
	groupsLoaded     bool
	states           []models.State
	statesLoaded     bool
	priorities       []models.Priority
	prioritiesLoaded bool
}

func newRefCache(client zammadAPI) *refCache {
	return &refCache{client: client}
}

func (c *refCache) Groups(ctx context.Context) ([]models.Group, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.groupsLoaded {
		groups, err := c.client.ListGroups(ctx)
		if err != nil {
			return nil, err
		}
		c.groups = groups
		c.groupsLoaded = true
	}
	return c.groups, nil
}

func (c *refCache) States(ctx context.Context) ([]models.State, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.statesLoaded {
		states, err := c.client.ListTicketStates(ctx)
		if err != nil {
			return nil, err
		}
		c.states = states
		c.statesLoaded = true
	}
	return c.states, nil
}

func (c *refCache) Priorities(ctx context.Context) ([]models.Priority, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.prioritiesLoaded {
		priorities, err := c.client.ListTicketPriorities(ctx)
		if err != nil {
			return nil, err
		}
		c.priorities = priorities
		c.prioritiesLoaded = true
	}
	return c.priorities, nil
}

// Clear drops every memoized list. The next access refetches.
func (c *refCache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.groups = nil
	c.groupsLoaded = false
	c.states = nil
	c.statesLoaded = false
	c.priorities = nil
	c.prioritiesLoaded = false
}

// stateTypes builds the id and name lookups the stats categorization
// uses.
func (c *refCache) stateTypes(ctx context.Context) (byID map[int]int, byName map[string]int, err error) {
	states, err := c.States(ctx)
	if err != nil {
		return nil, nil, err
	}
	byID = make(map[int]int, len(states))
	byName = make(map[string]int, len(states))
	for _, st := range states {
		byID[st.ID] = st.StateTypeID
		byName[st.Name] = st.StateTypeID
	}
	return byID, byName, nil
}
