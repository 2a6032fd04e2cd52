package roles

import (
	"context"
	"fmt"
	"sync"

	"github.com/rooclub/roobot/internal/platform"
)

type fakeRole struct {
	name     string
	colors   platform.Colors
	position int
}

// fakeDirectory is an in-memory guild. Methods listed in fail return that error.
type fakeDirectory struct {
	mu        sync.Mutex
	bot       platform.Member
	members   map[string]platform.Member
	roles     map[string]*fakeRole
	grants    map[string]map[string]bool // user -> role ids
	separator int                        // 0 means no separator role
	fail      map[string]error
	calls     []string
	nextID    int
}

func newFakeDirectory() *fakeDirectory {
	return &fakeDirectory{
		bot:     platform.Member{ID: "bot", Tag: "roobot", HighestPosition: 20, CanManageRoles: true},
		members: make(map[string]platform.Member),
		roles:   make(map[string]*fakeRole),
		grants:  make(map[string]map[string]bool),
		fail:    make(map[string]error),
	}
}

func (d *fakeDirectory) addMember(id string, position int, manage bool) {
	d.members[id] = platform.Member{ID: id, Tag: id + "#0001", DisplayName: id, HighestPosition: position, CanManageRoles: manage}
}

func (d *fakeDirectory) enter(method string) error {
	d.calls = append(d.calls, method)
	return d.fail[method]
}

func (d *fakeDirectory) count(method string) int {
	d.mu.Lock()
	defer d.mu.Unlock()
	n := 0
	for _, c := range d.calls {
		if c == method {
			n++
		}
	}
	return n
}

func (d *fakeDirectory) holds(userID, roleID string) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.grants[userID][roleID]
}

func (d *fakeDirectory) role(roleID string) (fakeRole, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	r, ok := d.roles[roleID]
	if !ok {
		return fakeRole{}, false
	}
	return *r, true
}

func (d *fakeDirectory) CreateRole(_ context.Context, _ string, spec platform.RoleSpec) (platform.RoleHandle, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if err := d.enter("CreateRole"); err != nil {
		return platform.RoleHandle{}, err
	}
	d.nextID++
	id := fmt.Sprintf("role-%d", d.nextID)
	d.roles[id] = &fakeRole{name: spec.Name, colors: spec.Colors, position: 1}
	return platform.RoleHandle{ID: id, Position: 1}, nil
}

func (d *fakeDirectory) DeleteRole(_ context.Context, _, roleID, _ string) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if err := d.enter("DeleteRole"); err != nil {
		return err
	}
	if _, ok := d.roles[roleID]; !ok {
		return platform.ErrRoleNotFound
	}
	delete(d.roles, roleID)
	for _, held := range d.grants {
		delete(held, roleID)
	}
	return nil
}

func (d *fakeDirectory) SetRoleName(_ context.Context, _, roleID, name string) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if err := d.enter("SetRoleName"); err != nil {
		return err
	}
	r, ok := d.roles[roleID]
	if !ok {
		return platform.ErrRoleNotFound
	}
	r.name = name
	return nil
}

func (d *fakeDirectory) SetRoleColors(_ context.Context, _, roleID string, colors platform.Colors) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if err := d.enter("SetRoleColors"); err != nil {
		return err
	}
	r, ok := d.roles[roleID]
	if !ok {
		return platform.ErrRoleNotFound
	}
	r.colors = colors
	return nil
}

func (d *fakeDirectory) SetRolePosition(_ context.Context, _, roleID string, position int) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if err := d.enter("SetRolePosition"); err != nil {
		return err
	}
	r, ok := d.roles[roleID]
	if !ok {
		return platform.ErrRoleNotFound
	}
	r.position = position
	return nil
}

func (d *fakeDirectory) GrantRoleToMember(_ context.Context, _, userID, roleID string) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if err := d.enter("GrantRoleToMember"); err != nil {
		return err
	}
	if _, ok := d.roles[roleID]; !ok {
		return platform.ErrRoleNotFound
	}
	if d.grants[userID] == nil {
		d.grants[userID] = make(map[string]bool)
	}
	d.grants[userID][roleID] = true
	return nil
}

func (d *fakeDirectory) RevokeRoleFromMember(_ context.Context, _, userID, roleID string) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if err := d.enter("RevokeRoleFromMember"); err != nil {
		return err
	}
	if _, ok := d.roles[roleID]; !ok {
		return platform.ErrRoleNotFound
	}
	delete(d.grants[userID], roleID)
	return nil
}

func (d *fakeDirectory) FetchMember(_ context.Context, _, userID string) (platform.Member, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if err := d.enter("FetchMember"); err != nil {
		return platform.Member{}, err
	}
	m, ok := d.members[userID]
	if !ok {
		return platform.Member{}, platform.ErrMemberNotFound
	}
	return m, nil
}

func (d *fakeDirectory) BotMember(context.Context, string) (platform.Member, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if err := d.enter("BotMember"); err != nil {
		return platform.Member{}, err
	}
	return d.bot, nil
}

func (d *fakeDirectory) FindRoleReference(context.Context, string) (int, bool, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if err := d.enter("FindRoleReference"); err != nil {
		return 0, false, err
	}
	return d.separator, d.separator > 0, nil
}

func (d *fakeDirectory) RoleMemberCount(_ context.Context, _, roleID string) (int, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if err := d.enter("RoleMemberCount"); err != nil {
		return 0, err
	}
	n := 0
	for _, held := range d.grants {
		if held[roleID] {
			n++
		}
	}
	return n, nil
}

type auditEntry struct {
	action string
	roleID string
}

type fakeAuditor struct {
	mu      sync.Mutex
	entries []auditEntry
}

func (a *fakeAuditor) Record(_ context.Context, _, _, action, roleID string, _ map[string]any) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.entries = append(a.entries, auditEntry{action: action, roleID: roleID})
	return nil
}
