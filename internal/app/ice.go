package app

import "github.com/pion/webrtc/v4"

func DefaultICEServers() []webrtc.ICEServer {
	return []webrtc.ICEServer{
		{URLs: []string{"stun:stun.l.google.com:19302"}},
	}
}

// StaticICE serves a fixed STUN/TURN list from configuration.
type StaticICE struct {
	Servers []webrtc.ICEServer
}

func (s StaticICE) FetchICEServers() []webrtc.ICEServer {
	if len(s.Servers) == 0 {
		return DefaultICEServers()
	}
	out := make([]webrtc.ICEServer, len(s.Servers))
	copy(out, s.Servers)
	return out
}
