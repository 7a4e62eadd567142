/*
 * Copyright 2025 tomoncle.
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package types

// Common illegal/default values used by enums.
const (
	IllegalValue = -1
	IllegalName  = "unknown"
	IllegalDesc  = "unknown"
)

// BaseEnum represents a basic enum contract used by domain types.
type BaseEnum interface {
	IsValid() bool
	Number() int
	String() string
	Desc() string
	Name() string
}

// InsertKind tags which member of an InsertResult carries the outcome.
type InsertKind int

const (
	// InsertedIdentity means the driver reported the generated primary key.
	InsertedIdentity InsertKind = iota
	// InsertedFlag means only success and the affected row count are known.
	InsertedFlag
	// InsertedRecord means the full stored row was returned by the database.
	InsertedRecord
)

var _ BaseEnum = InsertedIdentity

var insertKindNames = map[InsertKind][2]string{
	InsertedIdentity: {"identity", "generated primary key"},
	InsertedFlag:     {"flag", "success flag with affected rows"},
	InsertedRecord:   {"record", "full inserted record"},
}

func (k InsertKind) IsValid() bool {
	_, ok := insertKindNames[k]
	return ok
}

func (k InsertKind) Number() int {
	if !k.IsValid() {
		return IllegalValue
	}
	return int(k)
}

func (k InsertKind) Name() string {
	if v, ok := insertKindNames[k]; ok {
		return v[0]
	}
	return IllegalName
}

func (k InsertKind) Desc() string {
	if v, ok := insertKindNames[k]; ok {
		return v[1]
	}
	return IllegalDesc
}

func (k InsertKind) String() string { return k.Name() }
