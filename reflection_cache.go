package nasc

import (
	"reflect"
	"sync"
)

// reflectionCache caches reflection metadata to avoid repeated type analysis.
type reflectionCache struct {
	mu sync.RWMutex

	// hook methods per (component type, instance type)
	hooks map[hookKey]hookSet

	// struct fields per struct type and tag name
	fields map[fieldsKey][]fieldInfo
}

type hookKey struct {
	component reflect.Type
	instance  reflect.Type
}

// hookSet lists the hook method indexes of an instance type in the method
// set order, and the declared hook names the instance type lacks.
type hookSet struct {
	indexes []int
	missing []string
}

type fieldsKey struct {
	typ reflect.Type
	tag string
}

// fieldInfo stores metadata about a struct field for injection.
type fieldInfo struct {
	index int
	name  string
	typ   reflect.Type
	opts  tagOptions
}

// newReflectionCache creates a new reflection cache.
func newReflectionCache() *reflectionCache {
	return &reflectionCache{
		hooks:  make(map[hookKey]hookSet),
		fields: make(map[fieldsKey][]fieldInfo),
	}
}

// hookMethods returns the post-construction hook methods of the instance
// type for the component type.
func (rc *reflectionCache) hookMethods(md metadataChain, component, instance reflect.Type) hookSet {
	key := hookKey{component, instance}

	rc.mu.RLock()
	hs, ok := rc.hooks[key]
	rc.mu.RUnlock()
	if ok {
		return hs
	}

	for i := 0; i < instance.NumMethod(); i++ {
		if md.IsPostConstructor(component, instance.Method(i)) {
			hs.indexes = append(hs.indexes, i)
		}
	}
	for _, name := range md.postConstructors(component) {
		if _, ok := instance.MethodByName(name); !ok {
			hs.missing = append(hs.missing, name)
		}
	}

	rc.mu.Lock()
	rc.hooks[key] = hs
	rc.mu.Unlock()
	return hs
}

// injectableFields returns exported fields of the struct type typ tagged
// with tag. Fields tagged "-" are skipped.
func (rc *reflectionCache) injectableFields(typ reflect.Type, tag string) []fieldInfo {
	key := fieldsKey{typ, tag}

	rc.mu.RLock()
	fields, ok := rc.fields[key]
	rc.mu.RUnlock()
	if ok {
		return fields
	}

	for i := 0; i < typ.NumField(); i++ {
		f := typ.Field(i)
		tv, ok := f.Tag.Lookup(tag)
		if !ok || f.PkgPath != "" {
			continue
		}
		opts := parseInjectTag(tv)
		if opts.skip {
			continue
		}
		fields = append(fields, fieldInfo{index: i, name: f.Name, typ: f.Type, opts: opts})
	}

	rc.mu.Lock()
	rc.fields[key] = fields
	rc.mu.Unlock()
	return fields
}

// clear clears all cached data.
func (rc *reflectionCache) clear() {
	rc.mu.Lock()
	defer rc.mu.Unlock()

	rc.hooks = make(map[hookKey]hookSet)
	rc.fields = make(map[fieldsKey][]fieldInfo)
}
