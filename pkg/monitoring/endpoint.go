package monitoring

import (
	"net/http"
	"strings"
)

// CliExecutor runs vtysh show commands with JSON output. *frr.Cli
// implements it.
type CliExecutor interface {
	ExecuteWithJSON(args []string) ([]byte, error)
}

// Endpoint proxies selected routing suite show commands over HTTP.
type Endpoint struct {
	cli CliExecutor
}

func NewEndpoint(cli CliExecutor) *Endpoint {
	return &Endpoint{cli: cli}
}

// CreateMux registers the show handlers.
func (e *Endpoint) CreateMux(mux *http.ServeMux) {
	mux.HandleFunc("/show/route", e.ShowRoute)
	mux.HandleFunc("/show/bgp", e.ShowBGP)
	mux.HandleFunc("/show/evpn", e.ShowEVPN)
}

func (e *Endpoint) writeResponse(data []byte, err error, w http.ResponseWriter) {
	if err != nil {
		http.Error(w, "failed to get data: "+err.Error(), http.StatusInternalServerError)
		return
	}
	if _, err := w.Write(data); err != nil {
		http.Error(w, "failed to write response: "+err.Error(), http.StatusInternalServerError)
	}
}

func (e *Endpoint) ShowRoute(w http.ResponseWriter, r *http.Request) {
	vrf := r.URL.Query().Get("vrf")
	if vrf == "" {
		vrf = "all"
	}

	protocol := r.URL.Query().Get("protocol")
	if protocol == "" {
		protocol = "ip"
	}

	data, err := e.cli.ExecuteWithJSON([]string{
		"show",
		protocol,
		"route",
		"vrf",
		vrf,
	})
	e.writeResponse(data, err, w)
}

func (e *Endpoint) ShowBGP(w http.ResponseWriter, r *http.Request) {
	vrf := r.URL.Query().Get("vrf")
	if vrf == "" {
		vrf = "all"
	}

	var data []byte
	var err error

	requestType := r.URL.Query().Get("type")
	if strings.ToLower(requestType) == "summary" {
		data, err = e.cli.ExecuteWithJSON([]string{
			"show",
			"bgp",
			"vrf",
			vrf,
			"summary",
		})
	} else {
		protocol := r.URL.Query().Get("protocol")
		if protocol == "" {
			protocol = "ipv4"
		}

		data, err = e.cli.ExecuteWithJSON([]string{
			"show",
			"bgp",
			"vrf",
			vrf,
			protocol,
			"unicast",
		})
	}
	e.writeResponse(data, err, w)
}

func (e *Endpoint) ShowEVPN(w http.ResponseWriter, r *http.Request) {
	var data []byte
	var err error

	requestType := r.URL.Query().Get("type")
	if requestType == "" {
		data, err = e.cli.ExecuteWithJSON([]string{
			"show",
			"evpn",
			"vni",
		})
	} else {
		vrf := r.URL.Query().Get("vrf")
		if vrf == "" {
			vrf = "all"
		}

		data, err = e.cli.ExecuteWithJSON([]string{
			"show",
			"evpn",
			requestType,
			"vni",
			vrf,
		})
	}
	e.writeResponse(data, err, w)
}
