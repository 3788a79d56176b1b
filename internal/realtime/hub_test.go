package realtime

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHubScopesByAccountAndTopic(t *testing.T) {
	hub := NewHub()
	var got []Event
	unsubscribe := hub.Subscribe("acc-1", TopicVaccines, func(ev Event) { got = append(got, ev) })

	hub.Publish(context.Background(), Event{AccountID: "acc-1", Topic: TopicVaccines})
	hub.Publish(context.Background(), Event{AccountID: "acc-2", Topic: TopicVaccines})
	hub.Publish(context.Background(), Event{AccountID: "acc-1", Topic: TopicDiet})

	assert.Equal(t, []Event{{AccountID: "acc-1", Topic: TopicVaccines}}, got)

	unsubscribe()
	unsubscribe()
	hub.Publish(context.Background(), Event{AccountID: "acc-1", Topic: TopicVaccines})
	assert.Len(t, got, 1)
	assert.Zero(t, hub.Subscribers("acc-1", TopicVaccines))
}

func TestHubInstancesAreIndependent(t *testing.T) {
	a, b := NewHub(), NewHub()
	calls := 0
	a.Subscribe("acc", TopicSuggestions, func(Event) { calls++ })

	b.Publish(context.Background(), Event{AccountID: "acc", Topic: TopicSuggestions})
	assert.Zero(t, calls)
}

func TestHubCallbackMayUnsubscribeItself(t *testing.T) {
	hub := NewHub()
	var unsubscribe func()
	calls := 0
	unsubscribe = hub.Subscribe("acc", TopicDiet, func(Event) {
		calls++
		unsubscribe()
	})

	hub.Publish(context.Background(), Event{AccountID: "acc", Topic: TopicDiet})
	hub.Publish(context.Background(), Event{AccountID: "acc", Topic: TopicDiet})
	assert.Equal(t, 1, calls)
}
