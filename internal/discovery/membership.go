// Package discovery maintains cluster membership over serf's gossip
// protocol and notifies a Handler (the replicator) as peers join and leave.
package discovery

import (
	"net"

	"github.com/hashicorp/serf/serf"
	"go.uber.org/zap"
)

// Handler reacts to membership changes; the replicator implements it.
type Handler interface {
	Join(name, addr string) error
	Leave(name string) error
}

// Config configures the local serf node.
type Config struct {
	NodeName       string
	BindAddr       string
	Tags           map[string]string
	StartJoinAddrs []string
}

// MemberShip wraps a serf.Serf instance and dispatches its events to a
// Handler.
type MemberShip struct {
	Config
	handler Handler
	serf    *serf.Serf
	events  chan serf.Event
	logger  *zap.Logger
}

// New starts a serf node under config and wires its events to handler.
func New(handler Handler, config Config) (*MemberShip, error) {
	m := &MemberShip{
		Config:  config,
		handler: handler,
		logger:  zap.L().Named("membership"),
	}

	if err := m.setupSerf(); err != nil {
		return nil, err
	}

	return m, nil
}

// Members returns every member currently known to the local serf node.
func (m *MemberShip) Members() []serf.Member {
	return m.serf.Members()
}

// Leave gracefully removes the local node from the cluster.
func (m *MemberShip) Leave() error {
	return m.serf.Leave()
}

func (m *MemberShip) setupSerf() (err error) {
	addr, err := net.ResolveTCPAddr("tcp", m.BindAddr)
	if err != nil {
		return err
	}

	config := serf.DefaultConfig()
	config.Init()
	config.MemberlistConfig.BindAddr = addr.IP.String()
	config.MemberlistConfig.BindPort = addr.Port

	m.events = make(chan serf.Event)
	config.EventCh = m.events
	config.Tags = m.Tags
	config.NodeName = m.NodeName

	m.serf, err = serf.Create(config)
	if err != nil {
		return err
	}

	go m.eventHandler()

	if m.StartJoinAddrs != nil {
		if _, err = m.serf.Join(m.StartJoinAddrs, true); err != nil {
			return err
		}
	}

	return nil
}

func (m *MemberShip) eventHandler() {
	for e := range m.events {
		switch e.EventType() {
		case serf.EventMemberJoin:
			for _, member := range e.(serf.MemberEvent).Members {
				if m.isLocal(member) {
					continue
				}
				m.handleJoin(member)
			}

		case serf.EventMemberLeave, serf.EventMemberFailed:
			for _, member := range e.(serf.MemberEvent).Members {
				if m.isLocal(member) {
					return
				}
				m.handleLeave(member)
			}
		}
	}
}

func (m *MemberShip) isLocal(member serf.Member) bool {
	return m.serf.LocalMember().Name == member.Name
}

func (m *MemberShip) handleJoin(member serf.Member) {
	if err := m.handler.Join(member.Name, member.Tags["rpc_addr"]); err != nil {
		m.logError(err, "failed to join", member)
	}
}

func (m *MemberShip) handleLeave(member serf.Member) {
	if err := m.handler.Leave(member.Name); err != nil {
		m.logError(err, "failed to leave", member)
	}
}

func (m *MemberShip) logError(err error, msg string, member serf.Member) {
	m.logger.Error(
		msg,
		zap.Error(err),
		zap.String("name", member.Name),
		zap.String("rpc_addr", member.Tags["rpc_addr"]),
	)
}
