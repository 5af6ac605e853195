package dummydb

import (
	"sync"

	"github.com/trezcool/klabu/core/event"
	"github.com/trezcool/klabu/core/user"
)

type (
	DB struct {
		user    *userTable
		meeting *meetingTable
		contest *contestTable
	}

	userTable struct {
		sync.RWMutex
		table map[int]*user.User
		pk    int
	}

	meetingTable struct {
		sync.RWMutex
		table map[string]*event.Meeting
	}

	contestTable struct {
		sync.RWMutex
		table map[string]*event.Contest
	}
)

func Open() (*DB, error) {
	db := &DB{
		user:    &userTable{table: make(map[int]*user.User)},
		meeting: &meetingTable{table: make(map[string]*event.Meeting)},
		contest: &contestTable{table: make(map[string]*event.Contest)},
	}
	return db, nil
}
