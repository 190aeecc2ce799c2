// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package access

import (
	"net/http"
	"strings"

	"github.com/gorilla/mux"
	"github.com/pkg/errors"

	"github.com/vechain/swell/api/utils"
	"github.com/vechain/swell/builtin"
	builtinaccess "github.com/vechain/swell/builtin/access"
	"github.com/vechain/swell/runtime"
	"github.com/vechain/swell/state"
	"github.com/vechain/swell/swell"
)

// RoleMembership reports whether an account holds a role.
type RoleMembership struct {
	Role     swell.Bytes32 `json:"role"`
	RoleName string        `json:"roleName"`
	Account  swell.Address `json:"account"`
	HasRole  bool          `json:"hasRole"`
	Members  uint64        `json:"members"`
}

type Access struct {
	rt *runtime.Runtime
}

func New(rt *runtime.Runtime) *Access {
	return &Access{rt}
}

// parseRole accepts a well known role name or a 32 bytes hex role id.
func parseRole(s string) (swell.Bytes32, error) {
	switch strings.ToUpper(s) {
	case "PLATFORM_ADMIN":
		return builtinaccess.PlatformAdmin, nil
	case "BOT":
		return builtinaccess.Bot, nil
	}
	return swell.ParseBytes32(s)
}

func (a *Access) handleGetRole(w http.ResponseWriter, req *http.Request) error {
	role, err := parseRole(mux.Vars(req)["role"])
	if err != nil {
		return utils.BadRequest(errors.WithMessage(err, "role"))
	}
	account, err := swell.ParseAddress(mux.Vars(req)["address"])
	if err != nil {
		return utils.BadRequest(errors.WithMessage(err, "address"))
	}

	result := &RoleMembership{
		Role:     role,
		RoleName: builtinaccess.RoleName(role),
		Account:  *account,
	}
	if err := a.rt.Query(func(st *state.State, _ uint64) (err error) {
		aca := builtin.AccessControl.WithState(st)
		if result.HasRole, err = aca.HasRole(role, *account); err != nil {
			return
		}
		result.Members, err = aca.RoleMemberCount(role)
		return
	}); err != nil {
		return err
	}
	return utils.WriteJSON(w, result)
}

func (a *Access) Mount(root *mux.Router, pathPrefix string) {
	sub := root.PathPrefix(pathPrefix).Subrouter()

	sub.Path("/roles/{role}/{address}").
		Methods(http.MethodGet).
		Name("GET /access/roles/{role}/{address}").
		HandlerFunc(utils.WrapHandlerFunc(a.handleGetRole))
}
