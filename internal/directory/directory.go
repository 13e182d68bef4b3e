package directory

import (
	"fmt"
	"sort"
	"sync"

	"github.com/ARM-software/armnn-sub019/internal/guid"
)

// Directory is the registry of categories, devices, counter sets, and
// counters. Registration is a write (single RWMutex, write-locked);
// lookups are reads.
type Directory struct {
	mu sync.RWMutex

	categories   map[string]*Category
	devices      map[string]*Device
	counterSets  map[string]*CounterSet
	counters     map[uint16]*Counter
	countersByNm map[string]*Counter

	devicesByUID     map[guid.Guid]*Device
	counterSetsByUID map[guid.Guid]*CounterSet

	nextUID uint32 // lowest counter UID a new counter may use (monotonic, never reused)
}

// New returns an empty counter directory.
func New() *Directory {
	return &Directory{
		categories:       make(map[string]*Category),
		devices:          make(map[string]*Device),
		counterSets:      make(map[string]*CounterSet),
		counters:         make(map[uint16]*Counter),
		countersByNm:     make(map[string]*Counter),
		devicesByUID:     make(map[guid.Guid]*Device),
		counterSetsByUID: make(map[guid.Guid]*CounterSet),
	}
}

// RegisterCategory registers a new, uniquely-named category.
func (d *Directory) RegisterCategory(name string) (*Category, error) {
	if name == "" {
		return nil, fmt.Errorf("category name: %w", ErrInvalidArgument)
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	if _, exists := d.categories[name]; exists {
		return nil, fmt.Errorf("category %q: %w", name, ErrAlreadyRegistered)
	}
	c := &Category{Name: name, UID: guid.Static("category:" + name)}
	d.categories[name] = c
	return c, nil
}

// RegisterDevice registers a new, uniquely-named device, optionally
// attaching it to an existing category.
func (d *Directory) RegisterDevice(name string, cores uint16, parentCategory string) (*Device, error) {
	if name == "" || cores == 0 {
		return nil, fmt.Errorf("device name/cores: %w", ErrInvalidArgument)
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	if _, exists := d.devices[name]; exists {
		return nil, fmt.Errorf("device %q: %w", name, ErrAlreadyRegistered)
	}
	var cat *Category
	if parentCategory != "" {
		var ok bool
		cat, ok = d.categories[parentCategory]
		if !ok {
			return nil, fmt.Errorf("parent category %q: %w", parentCategory, ErrNotFound)
		}
	}
	dev := &Device{Name: name, UID: guid.Static("device:" + name), Cores: cores}
	d.devices[name] = dev
	d.devicesByUID[dev.UID] = dev
	if cat != nil {
		u := dev.UID
		cat.DeviceUID = &u
	}
	return dev, nil
}

// RegisterCounterSet registers a new, uniquely-named counter set.
func (d *Directory) RegisterCounterSet(name string, count uint16, parentCategory string) (*CounterSet, error) {
	if name == "" || count == 0 {
		return nil, fmt.Errorf("counter set name/count: %w", ErrInvalidArgument)
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	if _, exists := d.counterSets[name]; exists {
		return nil, fmt.Errorf("counter set %q: %w", name, ErrAlreadyRegistered)
	}
	var cat *Category
	if parentCategory != "" {
		var ok bool
		cat, ok = d.categories[parentCategory]
		if !ok {
			return nil, fmt.Errorf("parent category %q: %w", parentCategory, ErrNotFound)
		}
	}
	cs := &CounterSet{Name: name, UID: guid.Static("counterset:" + name), Count: count}
	d.counterSets[name] = cs
	d.counterSetsByUID[cs.UID] = cs
	if cat != nil {
		u := cs.UID
		cat.CounterSetUID = &u
	}
	return cs, nil
}

// RegisterCounterArgs bundles register_counter's fields; §4.2 lists them
// as positional parameters but Go favors a struct over an eleven-argument
// call for anything with this many optional fields.
type RegisterCounterArgs struct {
	BackendID      string
	UID            uint16
	ParentCategory string
	Class          uint16
	Interpolation  uint16
	Multiplier     float64
	Name           string
	Description    string
	Units          *string
	Cores          *uint16
	DeviceUID      *guid.Guid
	CounterSetUID  *guid.Guid
}

// RegisterCounter registers a new counter. If Cores > 1 the directory
// reserves UIDs [uid, uid+cores-1] and reports MaxUID accordingly; every
// reserved UID must subsequently be initialized in the value store by the
// caller. Neither the directory nor Service does this on its own.
func (d *Directory) RegisterCounter(args RegisterCounterArgs) (*Counter, error) {
	if args.Name == "" || args.Multiplier <= 0 {
		return nil, fmt.Errorf("counter name/multiplier: %w", ErrInvalidArgument)
	}

	cores := uint16(1)
	if args.Cores != nil {
		if *args.Cores == 0 {
			return nil, fmt.Errorf("counter cores: %w", ErrInvalidArgument)
		}
		cores = *args.Cores
	}
	maxUID := args.UID + cores - 1
	if maxUID < args.UID || uint32(maxUID) > MaxCounterUIDConst {
		return nil, fmt.Errorf("counter uid range [%d,%d]: %w", args.UID, maxUID, ErrUIDSpaceExhausted)
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	if _, exists := d.countersByNm[args.Name]; exists {
		return nil, fmt.Errorf("counter %q: %w", args.Name, ErrAlreadyRegistered)
	}
	if _, exists := d.counters[args.UID]; exists {
		return nil, fmt.Errorf("counter uid %d: %w", args.UID, ErrAlreadyRegistered)
	}
	if uint32(args.UID) < d.nextUID {
		return nil, fmt.Errorf("counter uid %d reuses a retired uid: %w", args.UID, ErrAlreadyRegistered)
	}
	if _, ok := d.categories[args.ParentCategory]; !ok {
		return nil, fmt.Errorf("parent category %q: %w", args.ParentCategory, ErrNotFound)
	}
	if args.DeviceUID != nil {
		if _, ok := d.devicesByUID[*args.DeviceUID]; !ok {
			return nil, fmt.Errorf("device uid %v: %w", *args.DeviceUID, ErrNotFound)
		}
	}
	if args.CounterSetUID != nil {
		if _, ok := d.counterSetsByUID[*args.CounterSetUID]; !ok {
			return nil, fmt.Errorf("counter set uid %v: %w", *args.CounterSetUID, ErrNotFound)
		}
	}

	counter := &Counter{
		UID:            args.UID,
		MaxUID:         maxUID,
		ParentCategory: args.ParentCategory,
		Class:          args.Class,
		Interpolation:  args.Interpolation,
		Multiplier:     args.Multiplier,
		Name:           args.Name,
		Description:    args.Description,
		Units:          args.Units,
		Cores:          args.Cores,
		DeviceUID:      args.DeviceUID,
		CounterSetUID:  args.CounterSetUID,
		BackendID:      args.BackendID,
	}
	d.counters[args.UID] = counter
	d.countersByNm[args.Name] = counter
	d.categories[args.ParentCategory].CounterUIDs = append(d.categories[args.ParentCategory].CounterUIDs, args.UID)
	d.nextUID = uint32(maxUID) + 1

	return counter, nil
}

// MaxCounterUIDConst mirrors constants.MaxCounterUID without importing the
// constants package, to keep directory free of an import cycle risk should
// constants ever need directory types.
const MaxCounterUIDConst = 0xFFFF

// CounterByUID looks up a counter by UID.
func (d *Directory) CounterByUID(uid uint16) (*Counter, bool) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	c, ok := d.counters[uid]
	return c, ok
}

// CounterByName looks up a counter by name.
func (d *Directory) CounterByName(name string) (*Counter, bool) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	c, ok := d.countersByNm[name]
	return c, ok
}

// HasCounter reports whether uid is registered.
func (d *Directory) HasCounter(uid uint16) bool {
	_, ok := d.CounterByUID(uid)
	return ok
}

// CounterCount returns the number of registered counters.
func (d *Directory) CounterCount() int {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return len(d.counters)
}

// Snapshot describes the full directory contents, ordered for stable wire
// encoding (categories/devices/counter-sets/counters in registration
// order would require extra bookkeeping; sorting by UID/name gives a
// deterministic, easy-to-test order instead).
type Snapshot struct {
	Categories  []Category
	Devices     []Device
	CounterSets []CounterSet
	Counters    []Counter
}

// Snapshot copies out the full directory contents under the read lock.
func (d *Directory) Snapshot() Snapshot {
	d.mu.RLock()
	defer d.mu.RUnlock()

	snap := Snapshot{}
	for _, c := range d.categories {
		snap.Categories = append(snap.Categories, *c)
	}
	for _, dev := range d.devices {
		snap.Devices = append(snap.Devices, *dev)
	}
	for _, cs := range d.counterSets {
		snap.CounterSets = append(snap.CounterSets, *cs)
	}
	for _, c := range d.counters {
		snap.Counters = append(snap.Counters, *c)
	}
	sort.Slice(snap.Categories, func(i, j int) bool { return snap.Categories[i].Name < snap.Categories[j].Name })
	sort.Slice(snap.Devices, func(i, j int) bool { return snap.Devices[i].Name < snap.Devices[j].Name })
	sort.Slice(snap.CounterSets, func(i, j int) bool { return snap.CounterSets[i].Name < snap.CounterSets[j].Name })
	sort.Slice(snap.Counters, func(i, j int) bool { return snap.Counters[i].UID < snap.Counters[j].UID })
	return snap
}

// Clear drops all entries. Valid only during a reset, while no worker can
// observe the directory concurrently.
func (d *Directory) Clear() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.categories = make(map[string]*Category)
	d.devices = make(map[string]*Device)
	d.counterSets = make(map[string]*CounterSet)
	d.counters = make(map[uint16]*Counter)
	d.countersByNm = make(map[string]*Counter)
	d.devicesByUID = make(map[guid.Guid]*Device)
	d.counterSetsByUID = make(map[guid.Guid]*CounterSet)
	d.nextUID = 0
}
