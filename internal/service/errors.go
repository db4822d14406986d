package service

import (
	"errors"
)

const (
	BadRequest          = 400
	NotFound            = 404
	Conflict            = 409
	InternalServerError = 500
)

var (
	ErrParamInvalid     = errors.New("参数错误")
	ErrRunActive        = errors.New("已有生成任务正在进行，请稍后再试")
	ErrPlanNotFound     = errors.New("当前没有内容计划")
	ErrPostNotFound     = errors.New("帖子不存在")
	ErrPostNotPending   = errors.New("仅待审批状态的帖子可以批准")
	ErrNoApprovedPosts  = errors.New("没有已批准的帖子可发布")
	ErrFileNotSupported = errors.New("不支持的文件类型")
	ErrPublishChannel   = errors.New("发布渠道未配置")
	UnExpectedError     = errors.New("系统异常，请稍后重试")
)

var ErrorMap = map[error]int{
	ErrParamInvalid:     BadRequest,
	ErrRunActive:        Conflict,
	ErrPlanNotFound:     NotFound,
	ErrPostNotFound:     NotFound,
	ErrPostNotPending:   BadRequest,
	ErrNoApprovedPosts:  BadRequest,
	ErrFileNotSupported: BadRequest,
	ErrPublishChannel:   InternalServerError,
	UnExpectedError:     InternalServerError,
}
