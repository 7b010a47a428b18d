package db

import "gorm.io/gorm"

// DiaryEntry 记录某位用户某一天的一行日记
// MemberID + Date 采用唯一索引，保证同一天只能写一次；记录写入后不再修改
// Date 以 2006-01-02 字符串保存，字典序即时间序
type DiaryEntry struct {
	gorm.Model
	MemberID    uint   `gorm:"index;index:idx_diary_entry_unique,unique"`
	Member      Member `gorm:"constraint:OnDelete:CASCADE"`
	Date        string `gorm:"size:10;not null;index:idx_diary_entry_unique,unique"`
	Line        string `gorm:"size:200;not null"`
	Score       int    `gorm:"not null"`
	Description string `gorm:"type:text"`
}

// TableName 重写确保唯一索引作用到 member_id + date
func (DiaryEntry) TableName() string {
	return "diary_entries"
}
