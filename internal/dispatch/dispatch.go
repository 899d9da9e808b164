// Package dispatch turns raw host messages into typed variants and routes
// them to a Handler.
package dispatch

import (
	"encoding/json"
	"errors"
	"fmt"
	"sort"

	"github.com/tidwall/gjson"
	"go.uber.org/zap"
)

var (
	ErrMissingAction = errors.New("message has no action")
	ErrUnknownAction = errors.New("unknown action")
	ErrMalformed     = errors.New("malformed message")
)

// Message is a decoded host message. The set of variants is closed.
type Message interface {
	Action() string
	apply(Handler)
}

// Handler has one method per variant.
type Handler interface {
	OpenUI(OpenUI)
	CloseUI(CloseUI)
	UpdateGroup(UpdateGroup)
	ShowInvite(ShowInvite)
	CloseInvitationsPanel(CloseInvitationsPanel)
	SearchStarted(SearchStarted)
	UpdateSearchTimer(UpdateSearchTimer)
	MatchFound(MatchFound)
	SearchCancelled(SearchCancelled)
	UpdateQueueStats(UpdateQueueStats)

	ShowRoundStart(ShowRoundStart)
	ShowCountdown(ShowCountdown)
	ShowGo(ShowGo)
	ShowRoundEnd(ShowRoundEnd)
	ShowMatchEnd(ShowMatchEnd)
	UpdateScore(UpdateScore)
	ShowScoreHUD(ShowScoreHUD)
	HideScoreHUD(HideScoreHUD)

	KillFeed(KillFeed)
	ClearKillFeed(ClearKillFeed)

	ShowDeathScreen(ShowDeathScreen)
	HideDeathScreen(HideDeathScreen)
	UpdateDeathScreen(UpdateDeathScreen)
	ShowProgress(ShowProgress)
	HideProgress(HideProgress)
	ShowPressNotification(ShowPressNotification)
	HidePressNotification(HidePressNotification)
	OpenSquad(OpenSquad)
	CloseSquad(CloseSquad)
	ShowPlayerInteract(ShowPlayerInteract)
	HidePlayerInteract(HidePlayerInteract)

	UpdateZonePlayers(UpdateZonePlayers)
	ShowExitHud(ShowExitHud)
	HideExitHud(HideExitHud)
}

type decoder func(raw []byte) (Message, error)

type defaulter interface {
	withDefaults() Message
}

func as[T Message](raw []byte) (Message, error) {
	var m T
	if err := json.Unmarshal(raw, &m); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	if d, ok := any(m).(defaulter); ok {
		return d.withDefaults(), nil
	}
	return m, nil
}

func kill[T interface{ normalize() KillFeed }](raw []byte) (Message, error) {
	var k T
	if err := json.Unmarshal(raw, &k); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	return k.normalize(), nil
}

func showProgress(kind ProgressKind) decoder {
	return func(raw []byte) (Message, error) {
		m := ShowProgress{Kind: kind}
		if err := json.Unmarshal(raw, &m); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
		}
		m.Kind = kind
		return m.withDefaults(), nil
	}
}

func hideProgress(kind ProgressKind) decoder {
	return func([]byte) (Message, error) { return HideProgress{Kind: kind}, nil }
}

var decoders = map[string]decoder{
	"openUI":                as[OpenUI],
	"open":                  as[OpenUI],
	"show":                  as[OpenUI],
	"closeUI":               as[CloseUI],
	"close":                 as[CloseUI],
	"updateGroup":           as[UpdateGroup],
	"showInvite":            as[ShowInvite],
	"closeInvitationsPanel": as[CloseInvitationsPanel],
	"searchStarted":         as[SearchStarted],
	"updateSearchTimer":     as[UpdateSearchTimer],
	"matchFound":            as[MatchFound],
	"searchCancelled":       as[SearchCancelled],
	"updateQueueStats":      as[UpdateQueueStats],

	"showRoundStart": as[ShowRoundStart],
	"showCountdown":  as[ShowCountdown],
	"showGo":         as[ShowGo],
	"showRoundEnd":   as[ShowRoundEnd],
	"showMatchEnd":   as[ShowMatchEnd],
	"updateScore":    as[UpdateScore],
	"showScoreHUD":   as[ShowScoreHUD],
	"hideScoreHUD":   as[HideScoreHUD],

	"showKillfeed":  kill[taggedKill],
	"addKillFeed":   kill[flatKill],
	"killFeed":      kill[wrappedKill],
	"clearKillFeed": as[ClearKillFeed],

	"showDeathScreen":        as[ShowDeathScreen],
	"hideDeathScreen":        as[HideDeathScreen],
	"updateDeathScreen":      as[UpdateDeathScreen],
	"showReviveProgress":     showProgress(ProgressRevive),
	"hideReviveProgress":     hideProgress(ProgressRevive),
	"showLootProgress":       showProgress(ProgressLoot),
	"hideLootProgress":       hideProgress(ProgressLoot),
	"showBandageProgress":    showProgress(ProgressBandage),
	"hideBandageProgress":    hideProgress(ProgressBandage),
	"showLaunderingProgress": showProgress(ProgressLaundering),
	"hideLaunderingProgress": hideProgress(ProgressLaundering),
	"showPressNotification":  as[ShowPressNotification],
	"hidePressNotification":  as[HidePressNotification],
	"openSquad":              as[OpenSquad],
	"closeSquad":             as[CloseSquad],
	"showPlayerInteract":     as[ShowPlayerInteract],
	"hidePlayerInteract":     as[HidePlayerInteract],

	"updateZonePlayers": as[UpdateZonePlayers],
	"showExitHud":       as[ShowExitHud],
	"hideExitHud":       as[HideExitHud],
}

// Actions lists every accepted action name, aliases included.
func Actions() []string {
	out := make([]string, 0, len(decoders))
	for a := range decoders {
		out = append(out, a)
	}
	sort.Strings(out)
	return out
}

// PeekAction returns the action name without decoding the payload.
func PeekAction(raw []byte) string {
	return gjson.GetBytes(raw, "action").String()
}

func Decode(raw []byte) (Message, error) {
	if !gjson.ValidBytes(raw) {
		return nil, ErrMalformed
	}
	root := gjson.ParseBytes(raw)
	if !root.IsObject() {
		return nil, fmt.Errorf("%w: not an object", ErrMalformed)
	}
	action := root.Get("action")
	if action.Type != gjson.String || action.Str == "" {
		return nil, ErrMissingAction
	}
	dec, ok := decoders[action.Str]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownAction, action.Str)
	}
	return dec(raw)
}

// Outcome is what happened to one inbound message.
type Outcome string

const (
	OutcomeHandled   Outcome = "handled"
	OutcomeUnknown   Outcome = "unknown"
	OutcomeMalformed Outcome = "malformed"
	OutcomePanicked  Outcome = "panicked"
)

type Dispatcher struct {
	h   Handler
	log *zap.Logger
}

func New(h Handler, log *zap.Logger) *Dispatcher {
	if log == nil {
		log = zap.NewNop()
	}
	return &Dispatcher{h: h, log: log.Named("dispatch")}
}

// Dispatch decodes raw and routes it. It never panics.
func (d *Dispatcher) Dispatch(raw []byte) Outcome {
	msg, err := Decode(raw)
	switch {
	case errors.Is(err, ErrUnknownAction):
		d.log.Warn("unknown action", zap.String("action", PeekAction(raw)))
		return OutcomeUnknown
	case err != nil:
		d.log.Warn("dropping message", zap.Error(err))
		return OutcomeMalformed
	}
	return d.Route(msg)
}

// Route hands an already decoded message to the handler.
func (d *Dispatcher) Route(msg Message) (out Outcome) {
	if msg == nil {
		return OutcomeMalformed
	}
	defer func() {
		if r := recover(); r != nil {
			d.log.Error("handler panicked",
				zap.String("action", msg.Action()),
				zap.Any("panic", r),
				zap.StackSkip("stack", 2))
			out = OutcomePanicked
		}
	}()
	msg.apply(d.h)
	return OutcomeHandled
}
