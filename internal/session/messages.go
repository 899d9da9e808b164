package session

import (
	"github.com/DoyleJ11/arena-hud/internal/dom"
	"github.com/DoyleJ11/arena-hud/internal/gateway"
)

type Msg interface{ isSessionMsg() }

// HostMessage carries one raw NUI message from the game host.
type HostMessage struct {
	Raw []byte
}

// Intent is a user action reported by a browser.
type Intent struct {
	ClientID string
	Action   string
	Payload  []byte
}

// Mount declares the elements a browser page has. The sender gets a fresh
// snapshot afterwards.
type Mount struct {
	ClientID string
	Seeds    []dom.Seed
}

type Join struct {
	ClientID string
	Outbox   chan Update
}

type Leave struct {
	ClientID string
}

// Completion brings a gateway response back onto the loop.
type Completion struct {
	Action string
	Then   func(*gateway.Response)
	Resp   *gateway.Response
}

type GetState struct {
	Reply chan View
}

type Shutdown struct{}

func (HostMessage) isSessionMsg() {}
func (Intent) isSessionMsg()      {}
func (Mount) isSessionMsg()       {}
func (Join) isSessionMsg()        {}
func (Leave) isSessionMsg()       {}
func (Completion) isSessionMsg()  {}
func (GetState) isSessionMsg()    {}
func (Shutdown) isSessionMsg()    {}
