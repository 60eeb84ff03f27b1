package services

import (
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dinorefs/dinorefs-backend/internal/models"
)

type fakeStepStore struct {
	steps map[string]*models.Step
}

func newFakeStepStore() *fakeStepStore {
	return &fakeStepStore{steps: map[string]*models.Step{}}
}

func (f *fakeStepStore) Create(step *models.Step) error {
	if step.ID == "" {
		step.ID = uuid.NewString()
	}
	f.steps[step.ID] = step
	return nil
}

func (f *fakeStepStore) GetByID(id string) (*models.Step, error) {
	step, ok := f.steps[id]
	if !ok {
		return nil, errors.New("record not found")
	}
	return step, nil
}

func (f *fakeStepStore) GetByChannelID(channelID string) ([]*models.Step, error) {
	var out []*models.Step
	for _, step := range f.steps {
		if step.ChannelID == channelID {
			out = append(out, step)
		}
	}
	return out, nil
}

func (f *fakeStepStore) Update(step *models.Step) error {
	f.steps[step.ID] = step
	return nil
}

func (f *fakeStepStore) Delete(id string) error {
	delete(f.steps, id)
	return nil
}

func (f *fakeStepStore) IncrementCounters(stepID string, attempts, completions int) error {
	step, ok := f.steps[stepID]
	if !ok {
		return errors.New("record not found")
	}
	step.TotalAttempts += attempts
	step.TotalCompletions += completions
	return nil
}

type fakeChannelStore struct {
	channels map[string]*models.Channel
}

func (f *fakeChannelStore) Create(ch *models.Channel) error {
	if ch.ID == "" {
		ch.ID = uuid.NewString()
	}
	f.channels[ch.ID] = ch
	return nil
}

func (f *fakeChannelStore) GetByID(id string) (*models.Channel, error) {
	ch, ok := f.channels[id]
	if !ok {
		return nil, errors.New("record not found")
	}
	return ch, nil
}

func (f *fakeChannelStore) GetByCampaignID(campaignID string) ([]*models.Channel, error) {
	var out []*models.Channel
	for _, ch := range f.channels {
		if ch.CampaignID == campaignID {
			out = append(out, ch)
		}
	}
	return out, nil
}

func (f *fakeChannelStore) Update(ch *models.Channel) error {
	f.channels[ch.ID] = ch
	return nil
}

func (f *fakeChannelStore) Delete(id string) error {
	delete(f.channels, id)
	return nil
}

type fakeEventAppender struct {
	events []*models.TrackingEvent
}

func (f *fakeEventAppender) Create(event *models.TrackingEvent) error {
	f.events = append(f.events, event)
	return nil
}

func (f *fakeEventAppender) byType(eventType string) []*models.TrackingEvent {
	var out []*models.TrackingEvent
	for _, e := range f.events {
		if e.EventType == eventType {
			out = append(out, e)
		}
	}
	return out
}

type fakeNotifier struct {
	calls []string
	fail  bool
}

func (f *fakeNotifier) NotifyRewardGranted(userID, campaignTitle, stepName string, points int) error {
	if f.fail {
		return errors.New("broker down")
	}
	f.calls = append(f.calls, stepName)
	return nil
}

type stepFixture struct {
	svc       *StepService
	steps     *fakeStepStore
	events    *fakeEventAppender
	campaigns *fakeCampaignCounters
	notifier  *fakeNotifier
	step      *models.Step
}

func newStepFixture(t *testing.T, rewardPoints int) *stepFixture {
	t.Helper()

	campaignID := uuid.NewString()
	ownerID := uuid.NewString()
	campaigns := &fakeCampaignCounters{campaigns: map[string]*models.Campaign{
		campaignID: {ID: campaignID, UserID: ownerID, Title: "Summer Promo", IsActive: true},
	}}
	channels := &fakeChannelStore{channels: map[string]*models.Channel{}}
	channel := &models.Channel{CampaignID: campaignID, ChannelType: models.ChannelTypeTelegram, ChannelName: "TG"}
	require.NoError(t, channels.Create(channel))

	steps := newFakeStepStore()
	events := &fakeEventAppender{}
	notifier := &fakeNotifier{}
	svc := NewStepService(steps, channels, campaigns, events, notifier)

	step, err := svc.CreateStep(channel.ID, &models.CreateStepRequest{
		StepType:     models.StepTypeComment,
		StepName:     "Leave a comment",
		RewardPoints: rewardPoints,
	})
	require.NoError(t, err)

	return &stepFixture{svc: svc, steps: steps, events: events, campaigns: campaigns, notifier: notifier, step: step}
}

func TestCreateStep_Defaults(t *testing.T) {
	fx := newStepFixture(t, 0)

	assert.True(t, fx.step.IsActive)
	assert.True(t, fx.step.IsRequired)
	assert.Equal(t, 1, fx.step.StepOrder)
}

func TestCreateStep_InvalidType(t *testing.T) {
	fx := newStepFixture(t, 0)

	_, err := fx.svc.CreateStep(fx.step.ChannelID, &models.CreateStepRequest{
		StepType: "dance",
		StepName: "Dance",
	})
	assert.ErrorContains(t, err, "invalid step type")
}

func TestUpdateStep_ScopedToChannel(t *testing.T) {
	fx := newStepFixture(t, 0)

	name := "renamed"
	updated, err := fx.svc.UpdateStep(fx.step.ChannelID, fx.step.ID, &models.UpdateStepRequest{StepName: &name})
	require.NoError(t, err)
	assert.Equal(t, "renamed", updated.StepName)

	// a step ID reached through someone else's channel stays untouched
	name = "hijacked"
	_, err = fx.svc.UpdateStep(uuid.NewString(), fx.step.ID, &models.UpdateStepRequest{StepName: &name})
	assert.ErrorContains(t, err, "step not found")
	assert.Equal(t, "renamed", fx.step.StepName)
}

func TestDeleteStep_ScopedToChannel(t *testing.T) {
	fx := newStepFixture(t, 0)

	err := fx.svc.DeleteStep(uuid.NewString(), fx.step.ID)
	assert.ErrorContains(t, err, "step not found")
	_, err = fx.steps.GetByID(fx.step.ID)
	require.NoError(t, err)

	require.NoError(t, fx.svc.DeleteStep(fx.step.ChannelID, fx.step.ID))
	_, err = fx.steps.GetByID(fx.step.ID)
	assert.Error(t, err)
}

func TestCompleteStep_FailedValidationIsNormalResult(t *testing.T) {
	fx := newStepFixture(t, 10)

	result, err := fx.svc.CompleteStep(fx.step.ID, &models.CompleteStepRequest{
		Data: map[string]interface{}{"comment_text": "short", "post_id": "p1"},
	}, "203.0.113.7", chromeWindows)
	require.NoError(t, err)

	assert.False(t, result.Completed)
	assert.NotEmpty(t, result.Errors)
	assert.False(t, result.RewardGranted)

	assert.Equal(t, 1, fx.step.TotalAttempts)
	assert.Equal(t, 0, fx.step.TotalCompletions)
	assert.Len(t, fx.events.byType(models.EventTypeStepAttempt), 1)
	assert.Empty(t, fx.events.byType(models.EventTypeStepCompletion))
	assert.Empty(t, fx.notifier.calls)
}

func TestCompleteStep_SuccessGrantsReward(t *testing.T) {
	fx := newStepFixture(t, 10)

	result, err := fx.svc.CompleteStep(fx.step.ID, &models.CompleteStepRequest{
		UserID: uuid.NewString(),
		Data:   map[string]interface{}{"comment_text": "a comment long enough to pass", "post_id": "p1"},
	}, "203.0.113.7", chromeWindows)
	require.NoError(t, err)

	assert.True(t, result.Completed)
	assert.True(t, result.RewardGranted)
	assert.Equal(t, 10, result.RewardPoints)

	assert.Equal(t, 1, fx.step.TotalAttempts)
	assert.Equal(t, 1, fx.step.TotalCompletions)
	assert.Equal(t, 10, fx.campaigns.rewards)
	assert.Len(t, fx.events.byType(models.EventTypeStepAttempt), 1)
	assert.Len(t, fx.events.byType(models.EventTypeStepCompletion), 1)
	assert.Len(t, fx.events.byType(models.EventTypeRewardGiven), 1)
	assert.Equal(t, []string{"Leave a comment"}, fx.notifier.calls)
}

func TestCompleteStep_NoRewardConfigured(t *testing.T) {
	fx := newStepFixture(t, 0)

	result, err := fx.svc.CompleteStep(fx.step.ID, &models.CompleteStepRequest{
		Data: map[string]interface{}{"comment_text": "a comment long enough to pass", "post_id": "p1"},
	}, "203.0.113.7", chromeWindows)
	require.NoError(t, err)

	assert.True(t, result.Completed)
	assert.False(t, result.RewardGranted)
	assert.Zero(t, result.RewardPoints)
	assert.Empty(t, fx.events.byType(models.EventTypeRewardGiven))
}

func TestCompleteStep_NotifierFailureDoesNotFailRequest(t *testing.T) {
	fx := newStepFixture(t, 10)
	fx.notifier.fail = true

	result, err := fx.svc.CompleteStep(fx.step.ID, &models.CompleteStepRequest{
		Data: map[string]interface{}{"comment_text": "a comment long enough to pass", "post_id": "p1"},
	}, "203.0.113.7", chromeWindows)
	require.NoError(t, err)

	assert.True(t, result.Completed)
	assert.True(t, result.RewardGranted)
	assert.Equal(t, 10, fx.campaigns.rewards)
}

func TestCompleteStep_InactiveStepHidden(t *testing.T) {
	fx := newStepFixture(t, 0)
	fx.step.IsActive = false

	_, err := fx.svc.CompleteStep(fx.step.ID, &models.CompleteStepRequest{
		Data: map[string]interface{}{},
	}, "203.0.113.7", chromeWindows)
	assert.ErrorContains(t, err, "step not found")
}
